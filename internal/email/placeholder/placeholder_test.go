package placeholder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFormat(t *testing.T) {
	values := map[string]string{
		"name":        "Priya Sharma",
		"course_name": "Options Basics",
		"reason":      "",
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain", "no fields here", "no fields here"},
		{"single", "Hi {name},", "Hi Priya Sharma,"},
		{"multiple", "{name} joined {course_name}.", "Priya Sharma joined Options Basics."},
		{"repeated", "{name} {name}", "Priya Sharma Priya Sharma"},
		{"empty_value", "a{reason}b", "ab"},
		{"escaped", "{{literal}} and {{{name}}}", "{literal} and {Priya Sharma}"},
		{"unicode", "₹ {name} ✓", "₹ Priya Sharma ✓"},
		{"empty_body", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.body, values)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IgnoresExtraValues(t *testing.T) {
	got, err := Format("Hi {name}", map[string]string{"name": "Ravi", "batch_name": "B1"})
	require.NoError(t, err)
	require.Equal(t, "Hi Ravi", got)
}

func TestFormat_Errors(t *testing.T) {
	values := map[string]string{"name": "Ravi"}

	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing", "Paid {amount_paid}", ErrMissing},
		{"empty_field", "Hi {}", ErrMalformed},
		{"unclosed", "Hi {name", ErrMalformed},
		{"nested_open", "Hi {na{me}", ErrMalformed},
		{"single_close", "Hi name}", ErrMalformed},
		{"format_spec", "Hi {name:>10}", ErrMalformed},
		{"attribute", "Hi {name.upper}", ErrMalformed},
		{"positional", "Hi {0}", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.body, values)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFields(t *testing.T) {
	got, err := Fields("Hi {name}, {{x}} {course_name} {name}\n{reason}")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"name", "course_name", "reason"}, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	_, err = Fields("broken {")
	require.ErrorIs(t, err, ErrMalformed)
}
