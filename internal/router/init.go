package router

import (
	"context"
	"expvar"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/member-directory/internal/application"
	"github.com/oksasatya/member-directory/internal/container"
	"github.com/oksasatya/member-directory/internal/domain/repository"
	"github.com/oksasatya/member-directory/internal/domain/verification"
	pginfra "github.com/oksasatya/member-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/member-directory/internal/infrastructure/search"
	handlers "github.com/oksasatya/member-directory/internal/interface/http"
	"github.com/oksasatya/member-directory/internal/router/modules"
	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/metrics"
)

const flowSweepInterval = time.Minute

type DirectoryDeps struct {
	Repo     repository.MemberRepository
	Flows    *application.FlowRegistry
	Members  *application.MemberService
	Admin    *application.AdminService
	Verify   *handlers.VerificationHandler
	Profile  *handlers.MemberHandler
	AdminAPI *handlers.AdminHandler
}

func buildDirectoryDeps() DirectoryDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewMemberRepository(container.GetPGPool())

	// Interfaces stay nil (not typed-nil) when Elasticsearch is not configured.
	var (
		pool      application.CandidateSource
		indexer   application.Indexer
		reindexer application.Reindexer
	)
	if es := container.GetES(); es != nil {
		idx := search.NewMemberIndex(es, cfg.ESMembersIndex, logger)
		pool, indexer, reindexer = idx, idx, idx
	}

	policy := verification.Policy{CodeTTL: cfg.OTPTTL, MaxAttempts: cfg.OTPMaxAttempts, HashCost: cfg.OTPCodeCost}
	lookup := application.LookupFromRepo(repo)
	dispatcher := container.GetDispatcher()
	flows := application.NewFlowRegistry(cfg.VerifySessionTTL, func() *verification.Session {
		return verification.New(lookup, dispatcher, verification.WithPolicy(policy))
	})

	members := application.NewMemberService(repo, pool, indexer, flows, container.GetRedis(), logger)
	members.RequestsPerEmail = cfg.OTPRequestsPerEmail
	members.RequestWindow = cfg.OTPRequestWindow
	members.Metrics = metrics.New(prometheus.DefaultRegisterer)
	metrics.ActiveFlows(prometheus.DefaultRegisterer, flows.Len)

	var uploader application.ObjectUploader
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		uploader = application.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket, SignedTTL: cfg.GCSExportURLTTL}
	}
	admin := application.NewAdminService(repo, indexer, reindexer, uploader, cfg.GCSExportPrefix, container.GetRedis(), logger)

	cookies := helpers.NewCookie(cfg.MemberCookieName, cfg.CookieDomain, cfg.CookieSecure)
	return DirectoryDeps{
		Repo:     repo,
		Flows:    flows,
		Members:  members,
		Admin:    admin,
		Verify:   handlers.NewVerificationHandler(members, cookies, logger),
		Profile:  handlers.NewMemberHandler(members, cookies, logger),
		AdminAPI: handlers.NewAdminHandler(admin, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry.
// It should be called once during startup; the flow janitor runs until ctx is done.
func InitModules(ctx context.Context, r *Registry) {
	cfg := container.GetConfig()
	deps := buildDirectoryDeps()
	go deps.Flows.Run(ctx, flowSweepInterval)

	r.Add(modules.NewVerificationModule(deps.Verify, cfg.MemberCookieName))
	r.Add(modules.NewMemberModule(deps.Profile, cfg.MemberCookieName))
	r.Add(modules.NewAdminModule(deps.AdminAPI, container.GetJWT()))

	if cfg.DebugMetricsEnabled {
		expvar.Publish("verify_flows_active", expvar.Func(func() any { return deps.Flows.Len() }))
		r.Add(modules.NewDebugModule())
	}
}
