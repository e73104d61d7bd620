package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/config"
	"github.com/gatekit/gatekit/internal/infrastructure/audit"
	"github.com/gatekit/gatekit/internal/infrastructure/mfa"
	"github.com/gatekit/gatekit/pkg/helpers"
	"github.com/gatekit/gatekit/pkg/session"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	sessions   *session.Manager
	mfaChecker mfa.EnrollmentChecker
	auditIx    *audit.Indexer
	rabbitPub  *helpers.RabbitPublisher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetSessions(m *session.Manager) { sessions = m }
func GetSessions() *session.Manager  { return sessions }

func SetMFA(c mfa.EnrollmentChecker) { mfaChecker = c }
func GetMFA() mfa.EnrollmentChecker  { return mfaChecker }

func SetAudit(ix *audit.Indexer) { auditIx = ix }
func GetAudit() *audit.Indexer   { return auditIx }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
