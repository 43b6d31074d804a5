package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func TestDefaultConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	g.Expect(cfg.Dt).To(BeNumerically(">", 0))
	g.Expect(cfg.Steps).To(BeNumerically(">", 0))
	g.Expect(cfg.Gravity.Y).To(BeNumerically("<", 0))
	g.Expect(cfg.Validate()).To(Succeed())
}

func TestGetPreset(t *testing.T) {
	g := NewWithT(t)

	moon := GetPreset("moon")
	g.Expect(moon).NotTo(BeNil())
	g.Expect(moon.Gravity.Y).To(BeNumerically("~", -1.62, 1e-6))
	g.Expect(moon.Validate()).To(Succeed())

	g.Expect(GetPreset("jupiter")).To(BeNil())
}

func TestAllPresetsValidate(t *testing.T) {
	g := NewWithT(t)
	names := ListPresets()
	g.Expect(names).NotTo(BeEmpty())
	for _, name := range names {
		g.Expect(GetPreset(name).Validate()).To(Succeed(), "preset %q", name)
	}
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "world.yaml")

	cfg := GetPreset("precise")
	g.Expect(Save(path, cfg)).To(Succeed())

	loaded, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded.Dt).To(Equal(cfg.Dt))
	g.Expect(loaded.Iterations.Velocity).To(Equal(uint32(16)))
	g.Expect(loaded.Spawn.Bodies).To(Equal(4))
}

func TestLoadRejectsInvalid(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	g.Expect(os.WriteFile(path, []byte("dt: -1\n"), 0644)).To(Succeed())

	_, err := Load(path)
	g.Expect(err).To(HaveOccurred())
}
