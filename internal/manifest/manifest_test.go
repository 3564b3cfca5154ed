package manifest

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"Group":"com.example","Name":"Speed","Version":"1.0.0","Patches":["speed.patches.yaml"]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.ID() != "com.example:Speed" {
		t.Errorf("ID = %s", m.ID())
	}
	if len(m.Patches) != 1 || m.Patches[0] != "speed.patches.yaml" {
		t.Errorf("Patches = %v", m.Patches)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"Name":"x"}`)); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing group: err = %v, want ErrInvalid", err)
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Error("truncated json: want error")
	}
}

func TestSelf(t *testing.T) {
	if Self().Version != Version {
		t.Errorf("Self().Version = %s, want %s", Self().Version, Version)
	}
	if UserAgent() != "hyinit/"+Version {
		t.Errorf("UserAgent = %s", UserAgent())
	}
}
