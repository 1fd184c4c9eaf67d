package exports

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestComplianceKey(t *testing.T) {
	day := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		clubName string
		clubID   string
		want     string
	}{
		{name: "club_name", clubName: "Clontarf RFC", clubID: "c1", want: "compliance/clontarf-rfc/2026-10-19.csv"},
		{name: "fallback_id", clubName: "", clubID: "Club-42", want: "compliance/club-42/2026-10-19.csv"},
		{name: "fallback_literal", want: "compliance/club/2026-10-19.csv"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ComplianceKey(test.clubName, test.clubID, day); got != test.want {
				t.Fatalf("ComplianceKey() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestFileSinkPut(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink() error: %v", err)
	}

	location, err := sink.Put(context.Background(), "compliance/club/2026-10-19.csv", "text/csv", strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if location != filepath.Join(dir, "compliance", "club", "2026-10-19.csv") {
		t.Fatalf("location = %q", location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Fatalf("export contents = %q", data)
	}
}

func TestFileSinkRejectsEscapingKeys(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSink() error: %v", err)
	}
	for _, key := range []string{"", "/etc/passwd", "../outside.csv", "a/../../outside.csv"} {
		if _, err := sink.Put(context.Background(), key, "text/csv", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

type fakePutObject struct {
	input *s3.PutObjectInput
	body  string
}

func (f *fakePutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func TestS3SinkPut(t *testing.T) {
	fake := &fakePutObject{}
	sink := &S3Sink{client: fake, bucket: "club-exports"}

	location, err := sink.Put(context.Background(), "compliance/club/2026-10-19.csv", "text/csv", strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if location != "s3://club-exports/compliance/club/2026-10-19.csv" {
		t.Fatalf("location = %q", location)
	}
	if aws.ToString(fake.input.Bucket) != "club-exports" || aws.ToString(fake.input.ContentType) != "text/csv" {
		t.Fatalf("unexpected input: %+v", fake.input)
	}
	if fake.body != "a,b\n" {
		t.Fatalf("uploaded body = %q", fake.body)
	}
}
