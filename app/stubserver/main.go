// Command stubserver runs the local stand-in backend with a seeded
// dataset, so feedcli and manual testing have something to talk to.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/petresgate/feedcore/domain"
	"github.com/petresgate/feedcore/internal/stub"
)

const (
	defaultAddress = ":3000"
	seedUsers      = 3
	seedPubs       = 8
)

var statuses = []string{"lost", "found", "for adoption"}

func init() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using environment")
	}
}

func seed(store *stub.Store) {
	for i := 1; i <= seedUsers; i++ {
		store.AddUser(domain.User{
			ID:           int64(i),
			Name:         faker.Name(),
			Email:        faker.Email(),
			ProfileImage: faker.URL(),
		})
	}
	for i := 0; i < seedPubs; i++ {
		store.AddPublication(domain.Publication{
			Description: faker.Sentence(),
			Images:      []string{faker.URL()},
			Status:      statuses[i%len(statuses)],
			Location:    faker.Word(),
			CreatedAt:   time.Now().UTC().Add(-time.Duration(i) * time.Hour),
			User:        domain.User{ID: int64(i%seedUsers + 1)},
		})
	}
}

func main() {
	store := stub.NewStore()
	seed(store)
	route := stub.NewRouter(store)

	address := os.Getenv("STUB_ADDRESS")
	if address == "" {
		address = defaultAddress
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    address,
		Handler: route,
	}
	go func() {
		logrus.Infof("stub backend is running on %s", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown signal received, stopping stub backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
	logrus.Info("stub backend exiting")
}
