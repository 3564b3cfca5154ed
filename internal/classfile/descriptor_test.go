package classfile

import "testing"

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc   string
		params []string
		ret    string
		slots  int
	}{
		{"()V", nil, "V", 0},
		{"(I)I", []string{"I"}, "I", 1},
		{"(JLjava/lang/String;[[D)Z", []string{"J", "Ljava/lang/String;", "[[D"}, "Z", 4},
		{"(DD)Ljava/lang/Object;", []string{"D", "D"}, "Ljava/lang/Object;", 4},
	}
	for _, tt := range tests {
		mt, err := ParseMethodDescriptor(tt.desc)
		if err != nil {
			t.Errorf("%s: %v", tt.desc, err)
			continue
		}
		if len(mt.Params) != len(tt.params) {
			t.Errorf("%s: params = %v, want %v", tt.desc, mt.Params, tt.params)
			continue
		}
		for i := range mt.Params {
			if mt.Params[i] != tt.params[i] {
				t.Errorf("%s: param %d = %s, want %s", tt.desc, i, mt.Params[i], tt.params[i])
			}
		}
		if mt.Return != tt.ret {
			t.Errorf("%s: return = %s, want %s", tt.desc, mt.Return, tt.ret)
		}
		if mt.ArgSlots() != tt.slots {
			t.Errorf("%s: slots = %d, want %d", tt.desc, mt.ArgSlots(), tt.slots)
		}
	}
}

func TestParseMethodDescriptor_Invalid(t *testing.T) {
	for _, desc := range []string{"", "V", "(I", "(X)V", "(L;)V", "()", "()II", "(Ljava/lang/String)V"} {
		if _, err := ParseMethodDescriptor(desc); err == nil {
			t.Errorf("%q: expected error", desc)
		}
	}
}

func TestProfile(t *testing.T) {
	tests := []struct {
		major     uint16
		java      string
		supported bool
		frames    bool
		jsr       bool
	}{
		{44, "", false, false, true},
		{49, "1.5", true, false, true},
		{50, "1.6", true, false, true},
		{52, "1.8", true, true, false},
		{61, "17", true, true, false},
		{70, "26", false, true, false},
	}
	for _, tt := range tests {
		p := Profile(tt.major)
		if p.Java != tt.java || p.Supported != tt.supported || p.RequireFrames != tt.frames || p.AllowJSR != tt.jsr {
			t.Errorf("Profile(%d) = %+v", tt.major, p)
		}
	}
}
