package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AmmarC10/ContractinGO-BE/config"
	"github.com/AmmarC10/ContractinGO-BE/db"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
	"github.com/AmmarC10/ContractinGO-BE/services"
)

type Server struct {
	Config                 *config.Config
	Logger                 *zap.SugaredLogger
	AuthRepository         db.AuthRepository
	ConversationRepository db.ConversationRepository
	AdRepository           db.AdRepository
	AuthService            services.AuthService
	AdService              services.AdService
	MessagingService       services.MessagingService
	MediaService           services.MediaService
	Broker                 realtime.Broker
	DB                     db.GormDB
}

// Start runs the HTTP server until an interrupt arrives, then drains
// in-flight requests.
func (s *Server) Start() {
	r := s.setupRouter()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Config.Port),
		Handler: r,
	}

	go func() {
		s.Logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Errorf("forced shutdown: %v", err)
	}
}
