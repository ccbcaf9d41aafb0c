package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/usecase"
)

var errTooManyCheckouts = errors.New("too many payment attempts, slow down")

type checkoutRequest struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	PlanID  string `json:"plan_id"`
	AgentID string `json:"agent_id"`
}

type checkoutResponse struct {
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"`
	PlanLabel string     `json:"plan_label,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Agent     *agentView `json:"agent,omitempty"`
	Watch     *watchView `json:"watch,omitempty"`
}

type agentView struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Balance    int64     `json:"balance"`
	Plan       string    `json:"plan"`
	PlanExpiry time.Time `json:"plan_expiry"`
	Status     string    `json:"status"`
}

type watchView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type linkView struct {
	ID           string `json:"id"`
	ShareCode    string `json:"share_code"`
	ContentType  string `json:"content_type"`
	ContentID    string `json:"content_id"`
	ContentTitle string `json:"content_title"`
	Price        int64  `json:"price"`
	Views        int64  `json:"views"`
	Earnings     int64  `json:"earnings"`
	Active       bool   `json:"active"`
}

type planView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Audience string `json:"audience"`
	Price    int64  `json:"price"`
	Days     int    `json:"days"`
}

func newLinkView(l *model.SharedLink) *linkView {
	return &linkView{
		ID:           l.ID,
		ShareCode:    l.ShareCode,
		ContentType:  l.ContentType,
		ContentID:    l.ContentID,
		ContentTitle: l.ContentTitle,
		Price:        l.Price,
		Views:        l.Views,
		Earnings:     l.Earnings,
		Active:       l.Active,
	}
}

func newAgentView(a *model.Agent) *agentView {
	return &agentView{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Balance:    a.Balance,
		Plan:       a.Plan,
		PlanExpiry: a.PlanExpiry,
		Status:     string(a.Status),
	}
}

func (s *Server) handleSubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	s.runCheckout(w, r, usecase.KindSubscription)
}

func (s *Server) handleAgentCheckout(w http.ResponseWriter, r *http.Request) {
	s.runCheckout(w, r, usecase.KindAgentCreation)
}

func (s *Server) handleRenewalCheckout(w http.ResponseWriter, r *http.Request) {
	s.runCheckout(w, r, usecase.KindAgentRenewal)
}

func (s *Server) runCheckout(w http.ResponseWriter, r *http.Request, kind usecase.EntitlementKind) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if req.Phone == "" || req.PlanID == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if kind == usecase.KindAgentRenewal && req.AgentID == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	release, err := s.guardCheckout(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	defer release()

	res, err := s.checkout.Run(r.Context(), usecase.CheckoutRequest{
		Kind:    kind,
		Phone:   req.Phone,
		Name:    req.Name,
		PlanID:  req.PlanID,
		AgentID: req.AgentID,
	}, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := checkoutResponse{Reference: res.Reference, Amount: res.Amount}
	switch {
	case res.User != nil:
		resp.PlanLabel = res.User.PlanLabel
		resp.ExpiresAt = res.User.ExpiresAt
	case res.Agent != nil:
		resp.Agent = newAgentView(res.Agent)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || code == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	release, err := s.guardCheckout(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	defer release()

	res, err := s.checkout.Run(r.Context(), usecase.CheckoutRequest{
		Kind:      usecase.KindPayPerView,
		Phone:     req.Phone,
		ShareCode: code,
	}, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Reference: res.Reference,
		Amount:    res.Amount,
		Watch:     &watchView{Token: res.Grant.Token, ExpiresAt: res.Grant.ExpiresAt},
	})
}

func (s *Server) handleAgentLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	agent, err := s.agents.Authenticate(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgentView(agent))
}

func (s *Server) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
		Phone   string `json:"phone"`
		Amount  int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" || req.Phone == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	if err := s.agents.Withdraw(r.Context(), req.AgentID, req.Phone, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID      string `json:"agent_id"`
		ContentType  string `json:"content_type"`
		ContentID    string `json:"content_id"`
		ContentTitle string `json:"content_title"`
		Price        int64  `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	link, err := s.agents.CreateSharedLink(r.Context(), req.AgentID, req.ContentType, req.ContentID, req.ContentTitle, req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLinkView(link))
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	links, err := s.agents.ListSharedLinks(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]*linkView, 0, len(links))
	for _, l := range links {
		out = append(out, newLinkView(l))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*linkView `json:"data"`
	}{Data: out})
}

// handleSharedLink is the public landing view of a share code: enough to
// render a purchase page, nothing about earnings.
func (s *Server) handleSharedLink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	link, err := s.agents.FindSharedLink(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	if !link.Active {
		writeError(w, domain.ErrLinkInactive)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ShareCode    string `json:"share_code"`
		ContentType  string `json:"content_type"`
		ContentTitle string `json:"content_title"`
		Price        int64  `json:"price"`
	}{link.ShareCode, link.ContentType, link.ContentTitle, link.Price})
}

func (s *Server) handleVerifyWatch(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "watch token invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		LinkID    string    `json:"link_id"`
		ShareCode string    `json:"share_code"`
		ExpiresAt time.Time `json:"expires_at"`
	}{claims.LinkID, claims.ShareCode, claims.ExpiresAt.Time})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	var (
		plans []*model.Plan
		err   error
	)
	if audience := r.URL.Query().Get("audience"); audience != "" {
		plans, err = s.plans.ListByAudience(r.Context(), model.PlanAudience(audience))
	} else {
		plans, err = s.plans.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]*planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, &planView{ID: p.ID, Label: p.Label, Audience: string(p.Audience), Price: p.Price, Days: p.Days})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*planView `json:"data"`
	}{Data: out})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the HTTP surface. Payment failures are
// 402 so clients can distinguish "the payer declined" from everything else;
// a poll timeout is 504 because retrying the same checkout is safe.
func writeError(w http.ResponseWriter, err error) {
	var (
		gatewayErr *domain.GatewayError
		failedErr  *domain.PollFailedError
		timeoutErr *domain.PollTimeoutError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled):
		// Client is gone; the status code is never seen.
		status = 499
	case errors.As(err, &gatewayErr):
		status = http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		status = http.StatusGatewayTimeout
	case errors.As(err, &failedErr):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAgentBlocked):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAgentExpired):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLinkInactive):
		status = http.StatusGone
	case errors.Is(err, domain.ErrCheckoutInFlight):
		status = http.StatusConflict
	case errors.Is(err, errTooManyCheckouts):
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
