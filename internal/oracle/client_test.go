package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/stretchr/testify/require"
)

const metadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>com.arpnetworking.metrics</groupId>
  <artifactId>metrics-client</artifactId>
  <versioning>
    <latest>0.11.2</latest>
    <release>0.11.1</release>
    <versions>
      <version>0.10.0</version>
      <version>0.11.1</version>
      <version>0.11.2</version>
    </versions>
  </versioning>
</metadata>`

func TestClient_Latest(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write([]byte(metadata))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/maven2/")
	latest, found, err := c.Latest(context.Background(), models.NewCoordinate("com.arpnetworking.metrics", "metrics-client", "0.10.0"))

	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "0.11.2", latest)
	require.Equal(t, "/maven2/com/arpnetworking/metrics/metrics-client/maven-metadata.xml", requested)
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	latest, found, err := NewClient(srv.URL).Latest(context.Background(), models.NewCoordinate("org", "a", "1.0"))

	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, latest)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, found, err := NewClient(srv.URL).Latest(context.Background(), models.NewCoordinate("org", "a", "1.0"))

	require.False(t, found)
	require.ErrorIs(t, err, models.ErrOracleStatus)
	require.Contains(t, err.Error(), "502")
}

func TestClient_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance"))
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL).Latest(context.Background(), models.NewCoordinate("org", "a", "1.0"))
	require.ErrorIs(t, err, models.ErrOracleStatus)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, found, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond)).Latest(context.Background(), models.NewCoordinate("org", "a", "1.0"))

	require.Error(t, err)
	require.False(t, found)
	require.False(t, errors.Is(err, models.ErrOracleStatus))
}

func TestClient_TimeoutLeavesSharedHTTPClientAlone(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	shared := &http.Client{}
	client := NewClient(srv.URL, WithHTTPClient(shared), WithTimeout(20*time.Millisecond))

	_, found, err := client.Latest(context.Background(), models.NewCoordinate("org", "a", "1.0"))
	require.Error(t, err)
	require.False(t, found)
	require.Zero(t, shared.Timeout)
}

func TestNewClient_DefaultsToCentral(t *testing.T) {
	require.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"latest", metadata, "0.11.2"},
		{"release fallback", `<metadata><versioning><latest> </latest><release>2.0</release></versioning></metadata>`, "2.0"},
		{"last version fallback", `<metadata><versioning><versions><version>1.0</version><version>1.1</version></versions></versioning></metadata>`, "1.1"},
		{"empty versioning", `<metadata><versioning/></metadata>`, ""},
		{"no versioning", `<metadata/>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMockOracle(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockOracle().SetLatest("org:a", "1.0").SetError("org:b", boom)

	latest, found, err := m.Latest(context.Background(), models.NewCoordinate("org", "a", "0.9"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1.0", latest)

	_, _, err = m.Latest(context.Background(), models.NewCoordinate("org", "b", "1"))
	require.ErrorIs(t, err, boom)

	_, found, err = m.Latest(context.Background(), models.NewCoordinate("org", "c", "1"))
	require.NoError(t, err)
	require.False(t, found)

	require.Equal(t, []string{"org:a", "org:b", "org:c"}, m.Lookups())
}
