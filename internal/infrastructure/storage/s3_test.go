package storage

import "testing"

func TestOpenS3_EndpointScheme(t *testing.T) {
	tests := []struct {
		endpoint   string
		useSSL     bool
		wantHost   string
		wantScheme string
	}{
		{"minio:9000", false, "minio:9000", "http"},
		{"minio:9000", true, "minio:9000", "https"},
		{"https://s3.local/", false, "s3.local", "https"},
		{"http://localhost:9000", true, "localhost:9000", "http"},
	}
	for _, tt := range tests {
		cli, err := OpenS3(S3Config{Endpoint: tt.endpoint, AccessKey: "ak", SecretKey: "sk", UseSSL: tt.useSSL})
		if err != nil {
			t.Fatalf("OpenS3(%q): %v", tt.endpoint, err)
		}
		u := cli.EndpointURL()
		if u.Host != tt.wantHost || u.Scheme != tt.wantScheme {
			t.Errorf("OpenS3(%q) endpoint = %s://%s, want %s://%s", tt.endpoint, u.Scheme, u.Host, tt.wantScheme, tt.wantHost)
		}
	}
}
