package migstate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// stubS3 is a minimal S3API for exercising the error mapping.
type stubS3 struct {
	headErr error
	getData []byte
	getErr  error
	putErr  error

	puts [][]byte
}

func (s *stubS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if s.headErr != nil {
		return nil, s.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (s *stubS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(s.getData)),
	}, nil
}

func (s *stubS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	s.puts = append(s.puts, data)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend_ExistsMissingKey(t *testing.T) {
	backend := NewS3Backend(&stubS3{headErr: &types.NotFound{}}, "bucket", "state.json")

	exists, err := backend.Exists(context.Background())
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected missing key to report false")
	}
}

func TestS3Backend_ExistsConnectivityFailure(t *testing.T) {
	// A genuine failure must not be conflated with "does not exist".
	backend := NewS3Backend(&stubS3{headErr: errors.New("connection refused")}, "bucket", "state.json")

	_, err := backend.Exists(context.Background())
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected *BackendUnavailableError, got %v", err)
	}
	if unavailable.Op != "exists" {
		t.Errorf("Expected op exists, got %q", unavailable.Op)
	}
}

func TestS3Backend_ReadMissingKey(t *testing.T) {
	backend := NewS3Backend(&stubS3{getErr: &types.NoSuchKey{}}, "bucket", "state.json")

	_, err := backend.Read(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestS3Backend_ReadFailure(t *testing.T) {
	backend := NewS3Backend(&stubS3{getErr: &types.NoSuchBucket{}}, "bucket", "state.json")

	_, err := backend.Read(context.Background())
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("Expected *BackendUnavailableError, got %v", err)
	}
}

func TestS3Backend_ReadBody(t *testing.T) {
	payload := []byte(`{"version":"v1","stages":{}}`)
	backend := NewS3Backend(&stubS3{getData: payload}, "bucket", "state.json")

	data, err := backend.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("Expected %s, got %s", payload, data)
	}
}

func TestS3Backend_Write(t *testing.T) {
	stub := &stubS3{}
	backend := NewS3Backend(stub, "bucket", "state.json")

	payload := []byte(`{"version":"v1","stages":{"step1":"started"}}`)
	if err := backend.Write(context.Background(), payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if len(stub.puts) != 1 || string(stub.puts[0]) != string(payload) {
		t.Errorf("Expected one put with full body, got %v", stub.puts)
	}
}

func TestS3Backend_WriteFailure(t *testing.T) {
	backend := NewS3Backend(&stubS3{putErr: errors.New("access denied")}, "bucket", "state.json")

	err := backend.Write(context.Background(), []byte("{}"))
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("Expected *BackendUnavailableError, got %v", err)
	}
}

func TestS3Backend_StoreScenario(t *testing.T) {
	// The full ledger flow against the stubbed object store.
	stub := &stubS3{headErr: &types.NotFound{}, getErr: &types.NoSuchKey{}}
	store := NewStore(NewS3Backend(stub, "bucket", "state.json"))
	ctx := context.Background()

	created, err := store.EnsureInitialized(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("Expected initialization to write the template")
	}

	// Wire the stub so subsequent reads see what was written
	stub.getErr = nil
	stub.getData = stub.puts[0]

	final, changed, err := store.Set(ctx, "step1", StatusStarted)
	if err != nil {
		t.Fatal(err)
	}
	if final != StatusStarted || !changed {
		t.Errorf("Expected (started, true), got (%q, %v)", final, changed)
	}
}
