package cmd

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/judgecore/judgecore/internal/httpapi"
	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/judgerpc"
)

func serveCmd() *cobra.Command {
	var address, httpAddress string
	var clientCACert, serverCert, serverKey string
	var devCORS bool
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Start the gRPC judge service and the HTTP health/submit surface",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientCACert == "" {
				return fmt.Errorf("client CA cert required")
			} else if serverCert == "" {
				return fmt.Errorf("server cert required")
			} else if serverKey == "" {
				return fmt.Errorf("server key required")
			}
			clientCACertBytes, err := os.ReadFile(clientCACert)
			if err != nil {
				return fmt.Errorf("reading client CA cert: %w", err)
			}
			serverCertBytes, err := os.ReadFile(serverCert)
			if err != nil {
				return fmt.Errorf("reading server cert: %w", err)
			}
			serverKeyBytes, err := os.ReadFile(serverKey)
			if err != nil {
				return fmt.Errorf("reading server key: %w", err)
			}
			creds, err := judgerpc.MTLSServerCredentials(clientCACertBytes, serverCertBytes, serverKeyBytes)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			service := judge.NewService()
			defer func() {
				ctx, cancel := context.WithTimeout(cmd.Context(), 1*time.Second)
				defer cancel()
				_ = service.Shutdown(ctx)
			}()

			grpcSrv := grpc.NewServer(grpc.Creds(creds))
			defer grpcSrv.Stop()
			grpcSrv.RegisterService(&judgerpc.ServiceDesc, judgerpc.NewJudgeServiceServer(service))

			l, err := net.Listen("tcp", address)
			if err != nil {
				return fmt.Errorf("listening to address: %w", err)
			}
			grpcErrCh := make(chan error, 1)
			go func() { grpcErrCh <- grpcSrv.Serve(l) }()
			log.Printf("gRPC serving on %v", l.Addr().String())

			var httpSrv *http.Server
			httpErrCh := make(chan error, 1)
			if httpAddress != "" {
				httpLog, err := httpapi.DevelopmentLogger()
				if err != nil {
					return fmt.Errorf("building http logger: %w", err)
				}
				httpSrv = &http.Server{
					Addr:    httpAddress,
					Handler: httpapi.NewRouter(service, httpLog, devCORS),
				}
				go func() { httpErrCh <- httpSrv.ListenAndServe() }()
				log.Printf("HTTP serving on %v", httpAddress)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
			select {
			case err := <-grpcErrCh:
				return fmt.Errorf("serving grpc: %w", err)
			case err := <-httpErrCh:
				if err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("serving http: %w", err)
				}
				return nil
			case <-sigCh:
				log.Printf("Termination signal received, shutting down")
				if httpSrv != nil {
					ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
					defer cancel()
					_ = httpSrv.Shutdown(ctx)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&address, "address", "127.0.0.1:", "gRPC address to listen on")
	cmd.Flags().StringVar(&httpAddress, "http-address", "", "HTTP address to listen on (empty disables the HTTP surface)")
	cmd.Flags().StringVar(&clientCACert, "client-ca-cert", "", "Required CA certificate file to verify client certificates")
	cmd.Flags().StringVar(&serverCert, "server-cert", "", "Required server certificate file to present to clients")
	cmd.Flags().StringVar(&serverKey, "server-key", "", "Required server key file for server auth")
	cmd.Flags().BoolVar(&devCORS, "dev-cors", false, "Enable permissive CORS on the HTTP surface (dev only)")
	return cmd
}
