package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/exception"
	"github.com/mezonai/pohledger/interfaces"
	"github.com/mezonai/pohledger/jsonx"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/monitoring"
	"github.com/mezonai/pohledger/ratelimit"
	"github.com/mezonai/pohledger/transaction"
)

const maxBodyBytes = 32 << 20

type AirdropReq struct {
	Pubkey string `json:"pubkey"`
	Amount uint64 `json:"amount"`
}

type IngestReq struct {
	Slots    []block.Slot `json:"slots"`
	BankHash string       `json:"bank_hash,omitempty"`
}

type TransferResp struct {
	Status    string `json:"status"`
	Signature string `json:"signature"`
}

type APIServer struct {
	Node          interfaces.LedgerNode
	Health        interfaces.HealthService
	ListenAddr    string
	FaucetLimiter *ratelimit.FaucetLimiter

	engine *gin.Engine
	srv    *http.Server
}

// NewAPIServer wires routes. limiter may be nil to disable airdrop limits.
func NewAPIServer(n interfaces.LedgerNode, health interfaces.HealthService, addr string, limiter *ratelimit.FaucetLimiter) *APIServer {
	s := &APIServer{
		Node:          n,
		Health:        health,
		ListenAddr:    addr,
		FaucetLimiter: limiter,
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger())
	s.installRoutes(s.engine)
	return s
}

func (s *APIServer) installRoutes(r *gin.Engine) {
	r.GET("/health", s.healthHandler)
	r.GET("/poh", s.pohHandler)
	r.GET("/bank", s.bankHandler)
	r.GET("/ledger", s.ledgerHandler)
	r.GET("/config", s.configHandler)
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	r.POST("/tick", s.tickHandler)
	r.POST("/airdrop", s.airdropHandler)
	r.POST("/transfer", s.transferHandler)
	r.POST("/ingest", s.ingestHandler)
}

func (s *APIServer) Handler() http.Handler {
	return s.engine
}

func (s *APIServer) Start() {
	s.srv = &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logx.Info("API", "API listen on ", s.ListenAddr)
	exception.SafeGo("apiServer", func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("API", "Server stopped: ", err)
		}
	})
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Debug("API", fmt.Sprintf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start)))
	}
}

func renderJSON(c *gin.Context, status int, v interface{}) {
	b, err := jsonx.Marshal(v)
	if err != nil {
		logx.Error("API", "Encode response: ", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

// renderError maps a ledger error to its HTTP status and {code, message} body.
func renderError(c *gin.Context, err error) {
	le, ok := errors.As(err)
	if !ok {
		le = &errors.LedgerError{Code: errors.ErrCodeInternal, Message: err.Error()}
	}
	status := http.StatusBadRequest
	switch le.Code {
	case errors.ErrCodeWrongRole:
		status = http.StatusForbidden
	case errors.ErrCodeInternal:
		status = http.StatusInternalServerError
	}
	renderJSON(c, status, le)
}

// bindStrict decodes the body into v, rejecting unknown fields and bad shapes as malformed input.
func bindStrict(c *gin.Context, v interface{}) bool {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		renderError(c, errors.NewError(errors.ErrCodeMalformedInput, "empty body"))
		return false
	}
	if len(body) > maxBodyBytes {
		renderError(c, errors.NewError(errors.ErrCodeMalformedInput, "body too large"))
		return false
	}
	if err := jsonx.UnmarshalStrict(body, v); err != nil {
		renderError(c, errors.Newf(errors.ErrCodeMalformedInput, "invalid request: %v", err))
		return false
	}
	return true
}

func (s *APIServer) healthHandler(c *gin.Context) {
	status, err := s.Health.Check(c.Request.Context())
	if err != nil {
		renderJSON(c, http.StatusServiceUnavailable, gin.H{"status": "NOT_SERVING", "error": err.Error()})
		return
	}
	renderJSON(c, http.StatusOK, status)
}

func (s *APIServer) pohHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, s.Node.PohView())
}

func (s *APIServer) bankHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, s.Node.BankView())
}

func (s *APIServer) ledgerHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, s.Node.LedgerView())
}

func (s *APIServer) configHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, s.Node.ConfigView())
}

func (s *APIServer) tickHandler(c *gin.Context) {
	v, err := s.Node.Tick()
	if err != nil {
		renderError(c, err)
		return
	}
	renderJSON(c, http.StatusOK, v)
}

func (s *APIServer) airdropHandler(c *gin.Context) {
	var req AirdropReq
	if !bindStrict(c, &req) {
		return
	}
	if s.FaucetLimiter != nil {
		if ok, reason := s.FaucetLimiter.Allow(c.ClientIP(), req.Pubkey); !ok {
			logx.Warn("FAUCET", fmt.Sprintf("Rate limit exceeded by %s (ip=%s)", reason, c.ClientIP()))
			renderJSON(c, http.StatusTooManyRequests, gin.H{"code": "rate_limited", "message": "airdrop rate limit exceeded for " + reason})
			return
		}
	}
	if err := s.Node.Airdrop(req.Pubkey, req.Amount); err != nil {
		renderError(c, err)
		return
	}
	renderJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *APIServer) transferHandler(c *gin.Context) {
	var tx transaction.Transaction
	if !bindStrict(c, &tx) {
		return
	}
	sig, err := s.Node.SubmitTransfer(tx)
	if err != nil {
		renderError(c, err)
		return
	}
	renderJSON(c, http.StatusOK, TransferResp{Status: "ok", Signature: sig})
}

func (s *APIServer) ingestHandler(c *gin.Context) {
	var req IngestReq
	if !bindStrict(c, &req) {
		return
	}
	res, err := s.Node.Ingest(req.Slots, req.BankHash)
	if err != nil {
		renderError(c, err)
		return
	}
	renderJSON(c, http.StatusOK, res)
}
