// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/internal/metrics"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/auth"
	"github.com/yukiapp/yuki-server/pkg/config"
	contactservice "github.com/yukiapp/yuki-server/pkg/contacts/service"
	"github.com/yukiapp/yuki-server/pkg/contactstore"
	handleservice "github.com/yukiapp/yuki-server/pkg/handle/service"
	onrampprovider "github.com/yukiapp/yuki-server/pkg/onramp"
	onrampservice "github.com/yukiapp/yuki-server/pkg/onramp/service"
	passkeyservice "github.com/yukiapp/yuki-server/pkg/passkey/service"
	"github.com/yukiapp/yuki-server/pkg/passkeystore"
	"github.com/yukiapp/yuki-server/pkg/pgutil"
	"github.com/yukiapp/yuki-server/pkg/reserved"
	"github.com/yukiapp/yuki-server/pkg/routes"
	"github.com/yukiapp/yuki-server/pkg/upload"
	uploadservice "github.com/yukiapp/yuki-server/pkg/upload/service"
	"github.com/yukiapp/yuki-server/pkg/user"
	"github.com/yukiapp/yuki-server/pkg/userstore"
	walletservice "github.com/yukiapp/yuki-server/pkg/wallet/service"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

const defaultRequestTimeout = 60

// maxUploadBody caps the multipart request body for profile uploads, above
// the largest per-kind ceiling to leave room for multipart framing.
const maxUploadBody = 16 << 20

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sets, err := reserved.Load()
	if err != nil {
		return fmt.Errorf("load reserved sets: %w", err)
	}
	classifier := routes.NewClassifier(sets)

	userStore := userstore.NewStore(db)
	walletStore := walletstore.NewStore(db)
	contactStore := contactstore.NewStore(db)
	challengeStore := passkeystore.NewStore(db)

	tokens := auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.SessionTTL)
	guard := auth.NewGuard(tokens, walletResolver(userStore))

	blobs, err := upload.NewFSBlobStore(cfg.Upload.BlobDir, cfg.Upload.BlobBaseURL)
	if err != nil {
		return fmt.Errorf("setup blob store: %w", err)
	}

	walletSvc := walletservice.NewLog(
		walletservice.NewService(walletStore, cfg.Wallet.ChainID, logger), logger)
	handleSvc := handleservice.NewLog(
		handleservice.NewService(userStore, sets, logger), logger)
	passkeySvc := passkeyservice.NewLog(
		passkeyservice.NewService(challengeStore, walletStore,
			cfg.Passkey.RPID, cfg.Passkey.Origin, cfg.Passkey.ChallengeTTL, logger), logger)
	contactSvc := contactservice.NewLog(
		contactservice.NewService(contactStore, userStore, logger), logger)
	uploadSvc := uploadservice.NewLog(
		uploadservice.NewService(blobs, userStore, uploadservice.Limits{
			MaxAvatarBytes: cfg.Upload.MaxAvatarBytes,
			MaxBannerBytes: cfg.Upload.MaxBannerBytes,
		}, logger), logger)
	onrampSvc := onrampservice.NewLog(
		onrampservice.NewService(onrampprovider.NewCoinbaseProvider(
			cfg.Onramp.Coinbase.AppID,
			cfg.Onramp.Coinbase.BaseURL,
			[]byte(cfg.Onramp.Coinbase.SessionSecret),
			cfg.Onramp.Coinbase.SessionTTL,
		), logger), logger)

	router := s.setupRouter(routerDeps{
		classifier: classifier,
		guard:      guard,
		tokens:     tokens,
		provision:  userProvisioner(userStore),
		wallet:     walletSvc,
		handles:    handleSvc,
		passkeys:   passkeySvc,
		contacts:   contactSvc,
		uploads:    uploadSvc,
		onramp:     onrampSvc,
		logger:     logger,
	})

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

type routerDeps struct {
	classifier *routes.Classifier
	guard      *auth.Guard
	tokens     *auth.TokenIssuer
	provision  auth.UserProvisioner
	wallet     walletservice.Service
	handles    handleservice.Service
	passkeys   passkeyservice.Service
	contacts   contactservice.Service
	uploads    uploadservice.Service
	onramp     onrampservice.Service
	logger     *zap.Logger
}

func (s *Server) setupRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))
	r.Use(s.observe(deps.classifier))
	r.Use(routes.Admission(deps.classifier, deps.guard, s.cfg.Auth.LoginPath))
	r.Use(deps.guard.Identify)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	auth.RegisterRoutes(r, deps.tokens, deps.provision, deps.logger)
	walletservice.RegisterRoutes(r, deps.wallet, deps.logger)
	handleservice.RegisterRoutes(r, deps.handles, deps.logger)
	passkeyservice.RegisterRoutes(r, deps.passkeys, deps.logger)
	contactservice.RegisterRoutes(r, deps.contacts, deps.logger)
	uploadservice.RegisterRoutes(r, deps.uploads, maxUploadBody, deps.logger)
	onrampservice.RegisterRoutes(r, deps.onramp, deps.logger)

	// Uploaded blobs are served straight from disk in this deployment shape.
	blobServer := http.StripPrefix("/static/blobs/", http.FileServer(http.Dir(s.cfg.Upload.BlobDir)))
	r.Handle("/static/blobs/*", blobServer)

	// Single-segment paths that survive classification are profile lookups.
	r.Get("/{handle}", func(w http.ResponseWriter, req *http.Request) {
		target := "/profile/" + chi.URLParam(req, "handle")
		http.Redirect(w, req, target, http.StatusTemporaryRedirect)
	})

	return r
}

// observe counts requests by admission class and response status.
func (s *Server) observe(classifier *routes.Classifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			metrics.RequestsTotal.WithLabelValues(
				classifier.Classify(r.URL.Path).String(),
				fmt.Sprintf("%d", ww.Status()),
			).Inc()
		})
	}
}

// walletResolver adapts the user store to the guard's lookup shape.
func walletResolver(store userstore.Store) auth.WalletResolver {
	return func(ctx context.Context, address string) (uuid.UUID, error) {
		usr, err := store.GetUser(ctx, userstore.WithWalletAddress(address))
		if err != nil {
			return uuid.Nil, err
		}
		return usr.ID, nil
	}
}

// userProvisioner finds or creates the user owning a wallet address, for
// first-contact session issuance.
func userProvisioner(store userstore.Store) auth.UserProvisioner {
	return func(ctx context.Context, address string) (uuid.UUID, error) {
		usr, err := store.GetUser(ctx, userstore.WithWalletAddress(address))
		if err == nil {
			return usr.ID, nil
		}
		if !errors.Is(err, userstore.ErrUserNotFound) {
			return uuid.Nil, fmt.Errorf("lookup user by wallet: %w", err)
		}

		fresh := user.New("wallet:"+address, address)
		if err := store.CreateUser(ctx, fresh); err != nil {
			// A concurrent first request may have won the insert.
			if existing, lookupErr := store.GetUser(ctx, userstore.WithWalletAddress(address)); lookupErr == nil {
				return existing.ID, nil
			}
			return uuid.Nil, fmt.Errorf("create user: %w", err)
		}
		return fresh.ID, nil
	}
}
