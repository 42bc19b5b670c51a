package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/domain/repository"
	"github.com/ezfintutor/tutormail/internal/email"
	"github.com/ezfintutor/tutormail/internal/security/secretbox"
)

// setupEnv apunta el CLI a un store fs temporal, sin cache ni SMTP.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TUTORMAIL_CONFIG", "")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "fs")
	t.Setenv("STORAGE_PATH", filepath.Join(dir, "templates.yaml"))
	t.Setenv("CACHE_KIND", "none")
	t.Setenv("SMTP_HOST", "")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplates_ImportListGetDelete(t *testing.T) {
	dir := setupEnv(t)

	csvPath := filepath.Join(dir, "templates.csv")
	csv := "name,subject,body\n" +
		"welcome_email,Welcome!,\"Hi {name},\nglad you're here.\"\n" +
		"payment_email,Paid,\"{name} paid ₹{amount_paid} for {batch_name}\"\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o600))

	out, err := execute(t, "", "templates", "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2 templates")

	out, err = execute(t, "", "--out", "json", "templates", "list")
	require.NoError(t, err)
	var items []repository.EmailTemplate
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	require.Equal(t, "payment_email", items[0].Name)
	require.Equal(t, "Hi {name},\nglad you're here.", items[1].Body)

	out, err = execute(t, "", "templates", "get", "enrollment_email", "--effective")
	require.NoError(t, err)
	require.Contains(t, out, "# source: default")
	require.Contains(t, out, "Subject: Enrollment Confirmation")

	_, err = execute(t, "", "templates", "delete", "welcome_email")
	require.NoError(t, err)

	out, err = execute(t, "", "templates", "export")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "name,subject,body\n"), out)
	require.Contains(t, out, "payment_email")
	require.NotContains(t, out, "welcome_email")
}

func TestTemplates_ImportRejectsBadRows(t *testing.T) {
	dir := setupEnv(t)

	csvPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,subject,body\nwelcome_email,Hi,\"Hi {name\"\n,NoName,x\n"), 0o600))

	_, err := execute(t, "", "templates", "import", csvPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 2")
	require.Contains(t, err.Error(), "row 3")

	out, err := execute(t, "", "--out", "json", "templates", "list")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)
}

func TestTemplates_SetAndGet(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "", "templates", "set", "unenrollment_email", "--subject", "Bye", "--body", "{name} left {course_name}. {reason}")
	require.NoError(t, err)

	out, err := execute(t, "", "templates", "get", "unenrollment_email")
	require.NoError(t, err)
	require.Equal(t, "Subject: Bye\n\n{name} left {course_name}. {reason}\n", out)

	_, err = execute(t, "", "templates", "set", "unenrollment_email", "--subject", "Bye", "--body", "{broken")
	require.Error(t, err)
}

func TestTemplates_RejectFieldsTheKindDoesNotFill(t *testing.T) {
	dir := setupEnv(t)

	_, err := execute(t, "", "templates", "set", "welcome_email", "--subject", "Hi", "--body", "Hi {name}, course {course_name}")
	require.ErrorIs(t, err, email.ErrFieldNotAvailable)

	csvPath := filepath.Join(dir, "templates.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,subject,body\npayment_email,Paid,\"{name} {course_name}\"\n"), 0o600))
	_, err = execute(t, "", "templates", "import", csvPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 2 (payment_email)")

	out, err := execute(t, "", "--out", "json", "templates", "list")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)

	// sigue enviando con el default
	_, err = execute(t, "", "send", "welcome", "--email", "a@b.c")
	require.NoError(t, err)
}

func TestSend_WithoutSMTPLogsInDev(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "", "send", "payment", "--email", "student@example.com", "--first-name", "Asha", "--amount", "999", "--batch", "B7")
	require.NoError(t, err)
	require.Contains(t, out, "payment email sent to student@example.com")

	_, err = execute(t, "", "send", "payment", "--email", "student@example.com", "--amount", "lots", "--batch", "B7")
	require.Error(t, err)
}

func TestSMTP_EncryptPassword(t *testing.T) {
	setupEnv(t)
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("SECRETBOX_MASTER_KEY", key)

	out, err := execute(t, "hunter2\n", "smtp", "encrypt-password")
	require.NoError(t, err)

	pt, err := secretbox.DecryptWithKey(key, strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "hunter2", pt)
}
