package grpc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/client"
	clientmodels "github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func startBufServer(t *testing.T) (*client.GRPCClient, *fakeFieldwork) {
	t.Helper()

	s, fw := newTestServer()
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	c, err := client.NewGRPCClient("passthrough:///bufnet", "dev-1",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, fw
}

func TestRoundTrip_PingAndLogin(t *testing.T) {
	c, _ := startBufServer(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Login(ctx, "alice", "nope")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	token, err := c.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "good-token", token)
}

func TestRoundTrip_ExecuteWithoutTokenIsUnauthorized(t *testing.T) {
	c, fw := startBufServer(t)

	err := c.Execute(context.Background(), "op-1", clientmodels.CreateMission{MissionID: "m-1", Title: "t", Site: "s"})
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, fw.snapshot())
}

func TestRoundTrip_Execute(t *testing.T) {
	c, fw := startBufServer(t)
	c.SetAccessToken("good-token")
	ctx := context.Background()
	when := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		op     clientmodels.Operation
		method string
		want   any
	}{
		{
			name:   "mission",
			op:     clientmodels.CreateMission{MissionID: "m-1", Title: "Pump audit", Site: "Plant 4", ScheduledAt: when},
			method: "CreateMission",
			want:   models.Mission{ID: "m-1", Title: "Pump audit", Site: "Plant 4", ScheduledAt: when},
		},
		{
			name:   "non conformity",
			op:     clientmodels.CreateNonConformity{NonConformityID: "nc-1", MissionID: "m-1", Title: "Leak", Severity: "high", Findings: []string{"drip", "rust"}},
			method: "CreateNonConformity",
			want:   models.NonConformity{ID: "nc-1", MissionID: "m-1", Title: "Leak", Severity: "high", Findings: []string{"drip", "rust"}},
		},
		{
			name:   "action status",
			op:     clientmodels.UpdateActionStatus{ActionID: "a-1", Status: "done", ChangedAt: when},
			method: "UpdateActionStatus",
			want:   models.CorrectiveAction{ID: "a-1", Status: "done", ChangedAt: when},
		},
		{
			name:   "maintenance log",
			op:     clientmodels.CreateMaintenanceLog{LogID: "l-1", EquipmentID: "eq-7", Title: "Oil change", DurationMinutes: 45, PerformedAt: when},
			method: "CreateMaintenanceLog",
			want:   models.MaintenanceLog{ID: "l-1", EquipmentID: "eq-7", Title: "Oil change", DurationMinutes: 45, PerformedAt: when},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Execute(ctx, "op-"+tt.name, tt.op))

			got := fw.last()
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, "op-"+tt.name, got.req.Key)
			assert.Equal(t, "dev-1", got.req.DeviceID)
			assert.Equal(t, "u-1", got.req.UserID)
			assert.Equal(t, tt.want, got.arg)
		})
	}
}

func TestRoundTrip_ServerErrors(t *testing.T) {
	c, fw := startBufServer(t)
	c.SetAccessToken("good-token")
	op := clientmodels.CreateMission{MissionID: "m-1", Title: "t", Site: "s"}

	fw.setErr(common.ErrAlreadyExists)
	assert.NoError(t, c.Execute(context.Background(), "op-1", op))

	fw.setErr(common.ErrValidation)
	assert.ErrorIs(t, c.Execute(context.Background(), "op-1", op), client.ErrRejected)

	fw.setErr(common.ErrMissingReference)
	assert.ErrorIs(t, c.Execute(context.Background(), "op-1", op), client.ErrRejected)
}

func TestRoundTrip_UploadDocument(t *testing.T) {
	var uploaded []byte
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	c, fw := startBufServer(t)
	c.SetAccessToken("good-token")
	fw.url = storage.URL + "/documents/2026/03/01/x"
	fw.docKey = "documents/2026/03/01/x"

	body := []byte("%PDF-1.7 report")
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	sum := sha256.Sum256(body)

	err := c.Execute(context.Background(), "op-doc", clientmodels.UploadDocument{
		DocumentID:  "d-1",
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		LocalPath:   path,
		Size:        int64(len(body)),
		SHA256:      hex.EncodeToString(sum[:]),
	})
	require.NoError(t, err)
	assert.Equal(t, body, uploaded)

	calls := fw.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "RequestDocumentUpload", calls[0].method)
	assert.Equal(t, "report.pdf", calls[0].arg.(models.Document).FileName)
	assert.Equal(t, "ConfirmDocumentUpload", calls[1].method)
	assert.Equal(t, "d-1@documents/2026/03/01/x", calls[1].arg)
	assert.Equal(t, "op-doc", calls[1].req.Key)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewGRPCServer("not-an-address", logging.Nop(), fakeUsers{}, &fakeFieldwork{})
	assert.Error(t, s.Run(context.Background()))
}
