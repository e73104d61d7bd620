// Package audit ships authentication events to Elasticsearch. Indexing is
// best-effort: a down cluster degrades the audit trail, never a login.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event actions recorded by the authentication core.
const (
	ActionLoginSuccess  = "login_success"
	ActionLoginFailure  = "login_failure"
	ActionMFAPending    = "mfa_pending"
	ActionMFAConfirmed  = "mfa_confirmed"
	ActionMFAFailure    = "mfa_failure"
	ActionLogout        = "logout"
	ActionSignup        = "signup"
	ActionConfirm       = "confirm"
	ActionResetIssued   = "reset_issued"
	ActionResetComplete = "reset_complete"
)

type Event struct {
	Action    string            `json:"action"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	At        time.Time         `json:"at"`
}

// Indexer writes events into a single index. A nil Indexer, or one without a
// client, silently discards events so callers never need to guard.
type Indexer struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *Indexer {
	return &Indexer{ES: es, Index: index, Logger: logger}
}

func (ix *Indexer) Record(ctx context.Context, ev Event) {
	if ix == nil || ix.ES == nil || ix.Index == "" {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, _ := json.Marshal(ev)
	req := esapi.IndexRequest{Index: ix.Index, DocumentID: uuid.NewString(), Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		if ix.Logger != nil {
			ix.Logger.WithError(err).WithField("action", ev.Action).Warn("audit index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && ix.Logger != nil {
		ix.Logger.WithField("status", res.Status()).WithField("action", ev.Action).Warn("audit index response error")
	}
}
