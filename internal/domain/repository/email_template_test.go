package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpsertEmailTemplateInput_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		in      UpsertEmailTemplateInput
		wantErr bool
	}{
		{"ok trims name", UpsertEmailTemplateInput{Name: "  welcome_email ", Subject: "Hi"}, false},
		{"empty name", UpsertEmailTemplateInput{Name: "  ", Subject: "Hi"}, true},
		{"empty subject", UpsertEmailTemplateInput{Name: "x", Subject: " "}, true},
		{"name at limit", UpsertEmailTemplateInput{Name: strings.Repeat("n", MaxTemplateNameLen), Subject: "Hi"}, false},
		{"name too long", UpsertEmailTemplateInput{Name: strings.Repeat("n", MaxTemplateNameLen+1), Subject: "Hi"}, true},
		{"subject at limit in runes", UpsertEmailTemplateInput{Name: "x", Subject: strings.Repeat("₹", MaxTemplateSubjectLen)}, false},
		{"subject too long", UpsertEmailTemplateInput{Name: "x", Subject: strings.Repeat("s", MaxTemplateSubjectLen+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.in.Normalize()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, strings.TrimSpace(tt.in.Name), out.Name)
		})
	}
}
