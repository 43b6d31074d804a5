package solver

import "github.com/go-gl/mathgl/mgl32"

// Pipeline advances the simulation. Gravity and velocities integrate
// with a semi-implicit Euler scheme over the fixed tick.
type Pipeline struct{}

func NewPipeline() Pipeline {
	return Pipeline{}
}

// Step advances every awake dynamic body by params.Dt and moves
// kinematic bodies by their velocities. Static and sleeping bodies are
// untouched.
func (p *Pipeline) Step(gravity mgl32.Vec3, params *IntegrationParameters, bodies *BodySet, colliders *ColliderSet, joints *JointSet) {
	dt := params.Dt
	for _, h := range bodies.Handles() {
		body := bodies.Get(h)
		if body.Status == BodyStatusStatic || body.sleeping {
			continue
		}

		if body.Status == BodyStatusDynamic {
			body.LinVel = body.LinVel.Add(gravity.Mul(dt))
		}

		if !body.TranslationLocked {
			body.Position = body.Position.Add(body.LinVel.Mul(dt))
		}

		av := body.AngVel
		for i := 0; i < 3; i++ {
			if body.RotationLocked[i] {
				av[i] = 0
			}
		}
		if av.Len() > 0 {
			body.Rotation = integrateRotation(body.Rotation, av, dt)
		}
	}
}

// integrateRotation applies an angular velocity over dt:
// q' = normalize(q + dt/2 * (0, w) * q).
func integrateRotation(q mgl32.Quat, angVel mgl32.Vec3, dt float32) mgl32.Quat {
	w := mgl32.Quat{W: 0, V: angVel}
	dq := w.Mul(q).Scale(dt / 2)
	return mgl32.Quat{W: q.W + dq.W, V: q.V.Add(dq.V)}.Normalize()
}
