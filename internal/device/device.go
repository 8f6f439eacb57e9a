// Package device identifies compute targets that a model instance can be
// loaded on: a device type plus an ordinal index.
package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known device types.
const (
	TypeCPU        = "cpu"
	TypeGPU        = "gpu"
	TypeNeuronCore = "nc"
)

// Device is an opaque compute target. Equality is by value so a Device can be
// used directly as a map key. The zero value means "no device specified".
type Device struct {
	Type string
	ID   int
}

// CPU returns the host CPU device.
func CPU() Device { return Device{Type: TypeCPU} }

// GPU returns the GPU with the given ordinal.
func GPU(id int) Device { return Device{Type: TypeGPU, ID: id} }

// NeuronCore returns the accelerator core with the given id.
func NeuronCore(id int) Device { return Device{Type: TypeNeuronCore, ID: id} }

// IsZero reports whether d is unset.
func (d Device) IsZero() bool { return d.Type == "" }

// IsGPU reports whether d is a GPU.
func (d Device) IsGPU() bool { return d.Type == TypeGPU }

func (d Device) String() string {
	if d.IsZero() {
		return "default()"
	}
	if d.Type == TypeCPU {
		return "cpu()"
	}
	return d.Type + "(" + strconv.Itoa(d.ID) + ")"
}

// Name is the compact form accepted by Parse, e.g. "cpu", "gpu1", "nc0".
func (d Device) Name() string {
	if d.IsZero() {
		return ""
	}
	if d.Type == TypeCPU {
		return TypeCPU
	}
	return d.Type + strconv.Itoa(d.ID)
}

// Parse accepts "cpu", "gpu", "gpu1", "gpu:1", "gpu(1)" and "nc0". An empty
// string yields the zero Device.
func Parse(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Device{}, nil
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.Replace(s, "(", ":", 1)
	typ, idx := s, ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		typ, idx = s[:i], s[i+1:]
	} else {
		j := len(s)
		for j > 0 && s[j-1] >= '0' && s[j-1] <= '9' {
			j--
		}
		typ, idx = s[:j], s[j:]
	}
	if typ == "" {
		return Device{}, fmt.Errorf("invalid device %q: missing type", s)
	}
	for _, r := range typ {
		if (r < 'a' || r > 'z') && r != '_' {
			return Device{}, fmt.Errorf("invalid device %q: bad type", s)
		}
	}
	if typ == TypeCPU {
		if idx != "" && idx != "0" {
			return Device{}, fmt.Errorf("invalid device %q: cpu takes no index", s)
		}
		return CPU(), nil
	}
	id := 0
	if idx != "" {
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return Device{}, fmt.Errorf("invalid device %q: bad index", s)
		}
		id = n
	}
	return Device{Type: typ, ID: id}, nil
}

// ParseList parses a comma separated list of devices, skipping empty items.
func ParseList(s string) ([]Device, error) {
	var out []Device
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Device) MarshalText() ([]byte, error) { return []byte(d.Name()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Device) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Less orders devices by type then id.
func Less(a, b Device) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}
