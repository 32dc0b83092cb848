package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"finboard-go/internal/domain/ledger"
	"finboard-go/internal/domain/session"
	"finboard-go/internal/platform/config"
	platformtesting "finboard-go/internal/platform/testing"
	"finboard-go/internal/transport/api"
	"finboard-go/internal/transport/channel"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// backend stubs the REST and realtime boundaries behind one server.
type backend struct {
	router *gin.Engine

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newBackend(t *testing.T) (*backend, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backend{router: gin.New()}
	b.router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.mu.Unlock()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	server := httptest.NewServer(b.router)
	t.Cleanup(server.Close)
	return b, server.URL
}

func (b *backend) push(t *testing.T, event string, payload interface{}) {
	t.Helper()
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		data = encoded
	}
	frame, _ := json.Marshal(channel.Frame{Event: event, Data: data})

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.conns) == 0 {
		t.Fatal("no realtime connection")
	}
	if err := b.conns[len(b.conns)-1].WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("push frame: %v", err)
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	errors   []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

func newLedgerFixture(t *testing.T, b *backend, url string) (*Ledger, *channel.Client, *recordingNotifier) {
	t.Helper()

	store := session.NewStore(config.SessionConfig{CookieName: "token", CookieTTL: time.Hour})
	store.SetCredential("test-token")
	gateway := api.NewGateway(config.APIConfig{BaseURL: url, Timeout: 5 * time.Second}, store, platformtesting.SetupTestLogger(t))

	ch := channel.New(config.ChannelConfig{
		URL:              "ws" + strings.TrimPrefix(url, "http") + "/ws",
		ReconnectInitial: 10 * time.Millisecond,
		ReconnectMax:     50 * time.Millisecond,
	}, platformtesting.SetupTestLogger(t))
	t.Cleanup(ch.Close)

	notifier := &recordingNotifier{}
	svc := NewLedger(ledger.NewCache(), gateway, ch, notifier, platformtesting.SetupTestLogger(t))
	return svc, ch, notifier
}

func TestLedger_RefreshSeedsCache(t *testing.T) {
	b, url := newBackend(t)
	b.router.GET("/extrato/extrato", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"extratos": []gin.H{
			{"extratoid": "1", "data_movimento": "2024-01-01", "descricao": "Salário", "valorLancamento": 100, "sinal": "C"},
		}})
	})

	svc, _, _ := newLedgerFixture(t, b, url)

	var changes atomic.Int32
	svc.Observe(func() { changes.Add(1) })

	platformtesting.AssertNoError(t, svc.Refresh(context.Background()))
	platformtesting.AssertEqual(t, 1, svc.Cache().Len())
	platformtesting.AssertEqual(t, int32(1), changes.Load())
}

func TestLedger_RefreshFailureLeavesCacheUntouched(t *testing.T) {
	b, url := newBackend(t)
	fail := atomic.Bool{}
	b.router.GET("/extrato/extrato", func(c *gin.Context) {
		if fail.Load() {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "banco indisponível"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"extratos": []gin.H{
			{"extratoid": "1", "data_movimento": "2024-01-01", "descricao": "ok", "valorLancamento": 10, "sinal": "C"},
		}})
	})

	svc, _, notifier := newLedgerFixture(t, b, url)
	platformtesting.AssertNoError(t, svc.Refresh(context.Background()))

	fail.Store(true)
	platformtesting.AssertError(t, svc.Refresh(context.Background()))

	platformtesting.AssertEqual(t, 1, svc.Cache().Len())
	if msg := notifier.lastError(); !strings.Contains(msg, "banco indisponível") {
		t.Errorf("error message not surfaced: %q", msg)
	}
}

func TestLedger_BindAppliesNotifications(t *testing.T) {
	b, url := newBackend(t)
	svc, ch, _ := newLedgerFixture(t, b, url)

	release, err := svc.Bind()
	platformtesting.AssertNoError(t, err)
	defer release()

	ch.Connect(context.Background())
	platformtesting.Eventually(t, time.Second, ch.Connected)

	b.push(t, channel.TopicEntryCreated, gin.H{
		"extratoid": "1", "data_movimento": "2024-01-01", "descricao": "novo", "valorLancamento": 10, "sinal": "C",
	})
	platformtesting.Eventually(t, time.Second, func() bool { return svc.Cache().Len() == 1 })

	b.push(t, channel.TopicEntryUpdated, gin.H{
		"extratoid": "1", "data_movimento": "2024-01-01", "descricao": "editado", "valorLancamento": 20, "sinal": "D",
	})
	platformtesting.Eventually(t, time.Second, func() bool {
		entry, ok := svc.Cache().Get("1")
		return ok && entry.Description == "editado"
	})

	b.push(t, channel.TopicEntryDeleted, "1")
	platformtesting.Eventually(t, time.Second, func() bool { return svc.Cache().Len() == 0 })
}

func TestLedger_DeleteAllNotificationClearsCache(t *testing.T) {
	b, url := newBackend(t)
	svc, ch, _ := newLedgerFixture(t, b, url)

	svc.Cache().Seed([]ledger.Entry{
		{ID: "1", MovementDate: "2024-01-01", Sign: ledger.SignCredit},
		{ID: "2", MovementDate: "2024-01-02", Sign: ledger.SignDebit},
	})

	release, err := svc.Bind()
	platformtesting.AssertNoError(t, err)
	defer release()

	ch.Connect(context.Background())
	platformtesting.Eventually(t, time.Second, ch.Connected)

	b.push(t, channel.TopicEntryDeletedAll, nil)
	platformtesting.Eventually(t, time.Second, func() bool { return svc.Cache().Len() == 0 })

	totals := svc.Cache().Totals()
	if !totals.Credit.IsZero() || !totals.Debit.IsZero() || !totals.Balance.IsZero() {
		t.Errorf("totals after delete-all = %+v", totals)
	}
}

func TestLedger_ReleaseStopsDispatch(t *testing.T) {
	b, url := newBackend(t)
	svc, ch, _ := newLedgerFixture(t, b, url)

	release, err := svc.Bind()
	platformtesting.AssertNoError(t, err)

	ch.Connect(context.Background())
	platformtesting.Eventually(t, time.Second, ch.Connected)

	release()
	release() // releasing twice is fine

	b.push(t, channel.TopicEntryCreated, gin.H{"extratoid": "9", "data_movimento": "2024-01-01"})
	time.Sleep(100 * time.Millisecond)
	platformtesting.AssertEqual(t, 0, svc.Cache().Len())
}

func TestLedger_StatusTopicFeedsProgressCallback(t *testing.T) {
	b, url := newBackend(t)
	svc, ch, _ := newLedgerFixture(t, b, url)

	var mu sync.Mutex
	var stages []string
	svc.OnStatus(func(stage string) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
	})

	release, err := svc.Bind()
	platformtesting.AssertNoError(t, err)
	defer release()

	ch.Connect(context.Background())
	platformtesting.Eventually(t, time.Second, ch.Connected)

	b.push(t, channel.TopicStatus, gin.H{"etapa": "importando"})
	b.push(t, channel.TopicStatus, gin.H{"status": "concluído"})

	platformtesting.Eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(stages) == 2 && stages[0] == "importando" && stages[1] == "concluído"
	})
}

func TestLedger_DeletePatchesCacheOnConfirmation(t *testing.T) {
	b, url := newBackend(t)
	var deletedPath string
	b.router.DELETE("/extrato/:id", func(c *gin.Context) {
		deletedPath = c.Request.URL.Path
		c.Status(http.StatusOK)
	})

	svc, _, _ := newLedgerFixture(t, b, url)
	svc.Cache().Seed([]ledger.Entry{
		{ID: "1", Description: "mercado"},
		{ID: "2", Description: "salario"},
	})

	platformtesting.AssertNoError(t, svc.Delete(context.Background(), "1"))
	platformtesting.AssertEqual(t, "/extrato/1", deletedPath)
	platformtesting.AssertEqual(t, 1, svc.Cache().Len())
	if _, ok := svc.Cache().Get("1"); ok {
		t.Error("deleted entry still present in cache")
	}
}

func TestLedger_DeleteFailureLeavesCacheUntouched(t *testing.T) {
	b, url := newBackend(t)
	b.router.DELETE("/extrato/:id", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "banco indisponível"})
	})

	svc, _, notifier := newLedgerFixture(t, b, url)
	svc.Cache().Seed([]ledger.Entry{{ID: "1", Description: "mercado"}})

	platformtesting.AssertError(t, svc.Delete(context.Background(), "1"))
	platformtesting.AssertEqual(t, 1, svc.Cache().Len())
	if !strings.Contains(notifier.lastError(), "banco indisponível") {
		t.Errorf("server message not surfaced: %q", notifier.lastError())
	}
}

func TestLedger_ChartTopicDeliversRows(t *testing.T) {
	b, url := newBackend(t)
	svc, ch, _ := newLedgerFixture(t, b, url)

	var mu sync.Mutex
	var rows []api.ChartRow
	svc.OnChart(func(pushed []api.ChartRow) {
		mu.Lock()
		rows = pushed
		mu.Unlock()
	})

	release, err := svc.Bind()
	platformtesting.AssertNoError(t, err)
	defer release()

	ch.Connect(context.Background())
	platformtesting.Eventually(t, time.Second, ch.Connected)

	b.push(t, channel.TopicChartRefresh, []gin.H{
		{"data": "2024-01-01", "entrada": 100, "saida": 40},
		{"data": "2024-01-02", "entrada": 10, "saida": 0},
	})

	platformtesting.Eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rows) == 2 && rows[0].Date == "2024-01-01" && rows[1].Credit.Decimal().String() == "10"
	})
}

func TestLedger_ObserverRemoval(t *testing.T) {
	b, url := newBackend(t)
	b.router.GET("/extrato/extrato", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"extratos": []gin.H{}})
	})
	svc, _, _ := newLedgerFixture(t, b, url)

	var calls atomic.Int32
	remove := svc.Observe(func() { calls.Add(1) })

	platformtesting.AssertNoError(t, svc.Refresh(context.Background()))
	remove()
	platformtesting.AssertNoError(t, svc.Refresh(context.Background()))

	platformtesting.AssertEqual(t, int32(1), calls.Load())
}
