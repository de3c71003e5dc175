package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tavolo/internal/api"
	"tavolo/internal/auth"
	"tavolo/internal/db"
	"tavolo/internal/events"
	"tavolo/internal/repository"
	"tavolo/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	dbConn, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := dbConn.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKERS"))
	go publisher.Run(ctx)

	reservationRepo := repository.NewReservationRepository(dbConn)
	restaurantRepo := repository.NewRestaurantRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	sessionRepo := repository.NewSessionRepository(redisClient)
	ownerAuthRepo := repository.NewOwnerAuthRepository(dbConn)

	sender := service.NewSenderService()
	availabilitySvc := service.NewAvailabilityService(restaurantRepo, reservationRepo)
	reservationSvc := service.NewReservationService(reservationRepo, restaurantRepo, sender, publisher)
	wizardSvc := service.NewWizardService(sessionRepo, availabilitySvc, reservationSvc, restaurantRepo)
	restaurantSvc := service.NewRestaurantService(restaurantRepo)
	reviewSvc := service.NewReviewService(reviewRepo, restaurantRepo)
	ownerAuthSvc := service.NewOwnerAuthService(ownerAuthRepo)
	jobSvc := service.NewJobService(jobRepo)

	availabilityHandler := api.NewAvailabilityHandler(availabilitySvc)
	wizardHandler := api.NewWizardHandler(wizardSvc)
	reservationHandler := api.NewReservationHandler(reservationSvc)
	restaurantHandler := api.NewRestaurantHandler(restaurantSvc, reviewSvc)
	ownerHandler := api.NewOwnerHandler(restaurantSvc, reservationSvc)
	ownerAuthHandler := api.NewOwnerAuthHandler(ownerAuthSvc)

	c := cron.New()
	c.AddFunc("@every 15m", func() {
		if err := jobSvc.SendReservationReminders(); err != nil {
			log.Printf("Reminder job failed: %v", err)
		}
	})
	c.AddFunc("0 4 * * *", func() {
		if err := jobSvc.RefreshRestaurantRatings(); err != nil {
			log.Printf("Rating refresh job failed: %v", err)
		}
	})
	c.Start()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/restaurants", restaurantHandler.ListRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/{slug}", restaurantHandler.GetRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/{slug}/menu", restaurantHandler.GetMenu).Methods("GET")
	r.HandleFunc("/api/restaurants/{slug}/reviews", restaurantHandler.ListReviews).Methods("GET")
	r.HandleFunc("/api/restaurants/{slug}/reviews", restaurantHandler.CreateReview).Methods("POST")
	r.HandleFunc("/api/restaurants/{slug}/rating", restaurantHandler.GetRating).Methods("GET")
	r.HandleFunc("/api/availability", availabilityHandler.CheckAvailability).Methods("GET")

	// Booking wizard
	r.HandleFunc("/api/booking/sessions", wizardHandler.StartSession).Methods("POST")
	r.HandleFunc("/api/booking/sessions/{id}", wizardHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/booking/sessions/{id}", wizardHandler.Abandon).Methods("DELETE")
	r.HandleFunc("/api/booking/sessions/{id}/date-party", wizardHandler.SetDateParty).Methods("PUT")
	r.HandleFunc("/api/booking/sessions/{id}/time", wizardHandler.SetTime).Methods("PUT")
	r.HandleFunc("/api/booking/sessions/{id}/guest-details", wizardHandler.SetGuestDetails).Methods("PUT")
	r.HandleFunc("/api/booking/sessions/{id}/submit", wizardHandler.Submit).Methods("POST")
	r.HandleFunc("/api/booking/sessions/{id}/previous", wizardHandler.Previous).Methods("POST")

	// Reservations
	r.HandleFunc("/api/reservations", reservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations", reservationHandler.ListReservations).Methods("GET")
	r.HandleFunc("/api/reservations/{code}", reservationHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{code}/cancel", reservationHandler.CancelReservation).Methods("POST")

	// Owner auth stays outside the protected subrouter.
	r.HandleFunc("/owner/auth/login", ownerAuthHandler.Login).Methods("POST")
	r.HandleFunc("/owner/auth/signup", ownerAuthHandler.Signup).Methods("POST")

	// Owner endpoints (protected)
	owner := r.PathPrefix("/owner").Subrouter()
	owner.Use(auth.OwnerAuthMiddleware)
	owner.HandleFunc("/restaurants", ownerHandler.ListMyRestaurants).Methods("GET")
	owner.HandleFunc("/restaurants", ownerHandler.CreateRestaurant).Methods("POST")
	owner.HandleFunc("/restaurants/{id}", ownerHandler.UpdateRestaurant).Methods("PUT")
	owner.HandleFunc("/restaurants/{id}/tables", ownerHandler.ListTables).Methods("GET")
	owner.HandleFunc("/restaurants/{id}/tables", ownerHandler.ReplaceTables).Methods("PUT")
	owner.HandleFunc("/restaurants/{id}/menu", ownerHandler.AddMenuItem).Methods("POST")
	owner.HandleFunc("/restaurants/{id}/reservations", ownerHandler.ListReservations).Methods("GET")
	owner.HandleFunc("/reservations/{id}/status", ownerHandler.UpdateReservationStatus).Methods("PATCH")

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: corsHandler}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	c.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
