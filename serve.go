package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/booking"
	"github.com/dzoniops/booking-service/db"
	"github.com/dzoniops/booking-service/metrics"
	"github.com/dzoniops/booking-service/middleware"
	"github.com/dzoniops/booking-service/services"
	"github.com/dzoniops/booking-service/store"
	"github.com/dzoniops/booking-service/utils"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC booking service and the metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Fees().Validate(); err != nil {
				return err
			}
			if cfg.AdminJWTSecret == "" {
				level.Warn(logger).Log("msg", "ADMIN_JWT_SECRET is empty, admin RPCs will be refused")
			}

			var traceOut *os.File
			if cfg.TraceStdout {
				traceOut = os.Stdout
			}
			shutdownTracing, err := utils.InitTracing(traceOut)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			gdb, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			m := metrics.NewBooking(reg)
			st := store.NewGormStore(gdb, cfg.StoreTimeout)
			manager := booking.NewManager(st, cfg.Fees(),
				booking.WithLogger(log.With(logger, "component", "booking")),
				booking.WithTracerProvider(otel.GetTracerProvider()),
			)
			srv := services.NewServer(st, manager, m, log.With(logger, "component", "services"))

			err = serve(serveOptions{
				port:          cfg.Port,
				metricsPort:   cfg.MetricsPort,
				logger:        logger,
				registry:      reg,
				metrics:       m,
				server:        srv,
				authenticator: middleware.NewAuthenticator(cfg.AdminJWTSecret),
			})
			var sig run.SignalError
			if errors.As(err, &sig) {
				level.Info(logger).Log("msg", "shutting down", "signal", sig.Signal)
				return nil
			}
			return err
		},
	}
	cmd.Flags().Bool("migrate", false, "apply schema migrations before serving")
	return cmd
}

type serveOptions struct {
	port          string
	metricsPort   string
	logger        log.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Booking
	server        *services.Server
	authenticator *middleware.Authenticator
}

func serve(o serveOptions) error {
	logger, reg := o.logger, o.registry
	rpcLogger := log.With(logger, "service", "gRPC/server", "component", "booking")

	// Setup metrics.
	srvMetrics := grpcprom.NewServerMetrics(
		grpcprom.WithServerHandlingTimeHistogram(
			grpcprom.WithHistogramBuckets(
				[]float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120},
			),
		),
	)
	reg.MustRegister(srvMetrics)
	exemplarFromContext := func(ctx context.Context) prometheus.Labels {
		if span := trace.SpanContextFromContext(ctx); span.IsSampled() {
			return prometheus.Labels{"traceID": span.TraceID().String()}
		}
		return nil
	}

	grpcPanicRecoveryHandler := func(p any) (err error) {
		o.metrics.PanicsTotal.Inc()
		level.Error(rpcLogger).
			Log("msg", "recovered from panic", "panic", p, "stack", debug.Stack())
		return status.Errorf(codes.Internal, "%s", p)
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			// Order matters e.g. tracing interceptor have to create span first for the later exemplars to work.
			otelgrpc.UnaryServerInterceptor(),
			srvMetrics.UnaryServerInterceptor(
				grpcprom.WithExemplarFromContext(exemplarFromContext),
			),
			logging.UnaryServerInterceptor(
				utils.InterceptorLogger(rpcLogger),
				logging.WithFieldsFromContext(utils.TraceIDFields),
			),
			auth.UnaryServerInterceptor(o.authenticator.AuthFunc),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(grpcPanicRecoveryHandler)),
		),
	)

	api.RegisterBookingServiceServer(grpcSrv, o.server)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	srvMetrics.InitializeMetrics(grpcSrv)

	g := &run.Group{}
	g.Add(func() error {
		l, err := net.Listen("tcp", fmt.Sprintf(":%s", o.port))
		if err != nil {
			return err
		}
		level.Info(logger).Log("msg", "starting gRPC server", "addr", l.Addr().String())
		return grpcSrv.Serve(l)
	}, func(err error) {
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()
		grpcSrv.Stop()
	})

	httpSrv := &http.Server{Addr: fmt.Sprintf(":%s", o.metricsPort)}
	g.Add(func() error {
		m := http.NewServeMux()
		// Create HTTP handler for Prometheus metrics.
		m.Handle("/metrics", promhttp.HandlerFor(
			reg,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics e.g. to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		httpSrv.Handler = m
		level.Info(logger).Log("msg", "starting HTTP server", "addr", httpSrv.Addr)
		return httpSrv.ListenAndServe()
	}, func(error) {
		if err := httpSrv.Close(); err != nil {
			level.Error(logger).Log("msg", "failed to stop web server", "err", err)
		}
	})

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	return g.Run()
}
