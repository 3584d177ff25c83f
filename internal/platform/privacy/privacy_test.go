package privacy

import "testing"

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 standard address", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 already zeroed", input: "10.0.0.0", expected: "10.0.0.0"},
		{name: "ipv6 address", input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:0db8:85a3::"},
		{name: "empty string", input: "", expected: "unknown"},
		{name: "unknown sentinel", input: "unknown", expected: "unknown"},
		{name: "garbage", input: "not-an-ip", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnonymizeIP(tt.input); got != tt.expected {
				t.Errorf("AnonymizeIP(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMaskSSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "formatted ssn", input: "123-45-6789", expected: "***-**-6789"},
		{name: "unformatted ssn", input: "123456789", expected: "***-**-6789"},
		{name: "empty", input: "", expected: ""},
		{name: "wrong length", input: "12345", expected: "*********"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskSSN(tt.input); got != tt.expected {
				t.Errorf("MaskSSN(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
