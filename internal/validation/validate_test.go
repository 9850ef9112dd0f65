package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/emteq-ltd/lambda-s3-archiver/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid simple name", bucket: "my-bucket", wantErr: false},
		{name: "valid with dots", bucket: "my.bucket.name", wantErr: false},
		{name: "valid with numbers", bucket: "bucket123", wantErr: false},
		{name: "valid minimum length", bucket: "abc", wantErr: false},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("a", 64), wantErr: true},
		{name: "uppercase letters", bucket: "My-Bucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
		{name: "adjacent hyphens", bucket: "my--bucket", wantErr: true},
		{name: "IP address format", bucket: "192.168.1.1", wantErr: true},
		{name: "IP-like but out of range", bucket: "999.168.1.1", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidBucketName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid simple key", key: "archive.zip", wantErr: false},
		{name: "valid nested key", key: "exports/2024/archive.tar", wantErr: false},
		{name: "valid with spaces", key: "my folder/my archive.zip", wantErr: false},
		{name: "valid maximum length", key: strings.Repeat("a", 1024), wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "too long", key: strings.Repeat("a", 1025), wantErr: true},
		{name: "path traversal", key: "../etc/passwd", wantErr: true},
		{name: "embedded traversal", key: "exports/../../secret.zip", wantErr: true},
		{name: "absolute path", key: "/exports/archive.zip", wantErr: true},
		{name: "control character", key: "archive\x00.zip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidObjectKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
