package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

func TestRelayMailer_Send(t *testing.T) {
	t.Run("posts the message with the configured sender", func(t *testing.T) {
		// Arrange
		var got map[string]string
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			assert.Equal(t, "/messages", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		m := NewRelayMailer(config.Mail{RelayURL: server.URL, APIKey: "key-1", From: "vendas@empresa.com", Timeout: time.Second})

		// Act
		err := m.Send(context.Background(), Message{To: "ana@empresa.com", Subject: "Bem-vinda", Text: "senha: x"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Bearer key-1", auth)
		assert.Equal(t, "vendas@empresa.com", got["from"])
		assert.Equal(t, "ana@empresa.com", got["to"])
		assert.Equal(t, "Bem-vinda", got["subject"])
	})

	t.Run("client errors are returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"invalid recipient"}`))
		}))
		defer server.Close()

		m := NewRelayMailer(config.Mail{RelayURL: server.URL, Timeout: time.Second})

		err := m.Send(context.Background(), Message{To: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
	})
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "x"}))
}
