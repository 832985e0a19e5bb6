package ssrf

import "testing"

func TestValidatorIsSafe(t *testing.T) {
	t.Parallel()

	v := New()

	safe := []string{
		"https://www.wanted.co.kr/wd/12345",
		"http://example.com/jobs?id=1",
	}
	for _, u := range safe {
		if !v.IsSafe(u) {
			t.Errorf("expected %q to be safe", u)
		}
	}

	unsafe := []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"http://localhost:8080/admin",
		"http://127.0.0.1/",
		"http://10.0.0.5/internal",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://metadata.google.internal/computeMetadata/v1/",
		"http://db.service.internal/",
		"http://[::1]/",
	}
	for _, u := range unsafe {
		if v.IsSafe(u) {
			t.Errorf("expected %q to be rejected", u)
		}
	}
}
