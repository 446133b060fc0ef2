package main

import (
	"flag"
	"net/http"
	"os"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/ledger"
	"budget-tracker/internal/logger"
	"budget-tracker/internal/storage"
)

func main() {
	log := logger.New()

	port := flag.String("port", envOr("PORT", "8080"), "Port to listen on")
	dbPath := flag.String("db", envOr("DB_PATH", "budget.db"), "Path to database file")
	secureCookies := flag.Bool("secure-cookies", os.Getenv("SECURE_COOKIES") == "true", "Set the Secure flag on session cookies")
	flag.Parse()

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer db.Close()

	if err := db.CleanExpiredSessions(); err != nil {
		log.Warn().Err(err).Msg("clean expired sessions")
	}

	// Bootstrap an initial user from the environment when the database is
	// empty, so fresh deployments are usable without a separate tool run.
	if user, pass := os.Getenv("ADMIN_USER"), os.Getenv("ADMIN_PASSWORD"); user != "" && pass != "" {
		if count, err := db.UserCount(); err == nil && count == 0 {
			email := envOr("ADMIN_EMAIL", user+"@localhost")
			hash, err := auth.HashPassword(pass)
			if err != nil {
				log.Fatal().Err(err).Msg("hash admin password")
			}
			if _, err := db.CreateUser(user, email, hash); err != nil {
				log.Fatal().Err(err).Msg("create admin user")
			}
			log.Info().Str("user", user).Msg("created initial user")
		}
	}

	engine := ledger.NewEngine(db)
	h := handlers.NewHandlers(db, engine, log, *secureCookies)
	mux := setupRouter(h)

	log.Info().Str("port", *port).Str("db", *dbPath).Msg("server listening")
	if err := http.ListenAndServe(":"+*port, mux); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupRouter(h *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Authenticated
	api := http.NewServeMux()
	api.HandleFunc("GET /api/user/profile", h.Profile)

	api.HandleFunc("GET /api/accounts", h.ListAccounts)
	api.HandleFunc("POST /api/accounts", h.CreateAccount)
	api.HandleFunc("PUT /api/accounts/{id}", h.UpdateAccount)
	api.HandleFunc("DELETE /api/accounts/{id}", h.DeleteAccount)
	api.HandleFunc("GET /api/accounts/{id}/loan", h.LoanSummary)

	api.HandleFunc("GET /api/transactions", h.ListTransactions)
	api.HandleFunc("POST /api/transactions", h.CreateTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", h.UpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)
	api.HandleFunc("GET /api/transactions/by-category/{name}", h.ListTransactionsByCategory)

	api.HandleFunc("GET /api/bills", h.ListBills)
	api.HandleFunc("POST /api/bills", h.CreateBill)
	api.HandleFunc("PUT /api/bills/{id}", h.UpdateBill)
	api.HandleFunc("DELETE /api/bills/{id}", h.DeleteBill)
	api.HandleFunc("POST /api/bills/{id}/toggle-paid", h.ToggleBillPaid)
	api.HandleFunc("POST /api/bills/reset-all", h.ResetAllBills)
	api.HandleFunc("GET /api/bills/by-category/{name}", h.ListBillsByCategory)

	api.HandleFunc("GET /api/savings-goals", h.ListSavingsGoals)
	api.HandleFunc("POST /api/savings-goals", h.CreateSavingsGoal)
	api.HandleFunc("PUT /api/savings-goals/{id}", h.UpdateSavingsGoal)
	api.HandleFunc("DELETE /api/savings-goals/{id}", h.DeleteSavingsGoal)
	api.HandleFunc("POST /api/savings-goals/{id}/add-funds", h.AddGoalFunds)
	api.HandleFunc("POST /api/savings-goals/{id}/withdraw-funds", h.WithdrawGoalFunds)

	api.HandleFunc("GET /api/categories", h.ListCategories)
	api.HandleFunc("POST /api/categories/{name}/rename", h.RenameCategory)
	api.HandleFunc("DELETE /api/categories/{name}", h.RemoveCategory)

	mux.Handle("/api/", h.AuthMiddleware(api))

	return mux
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
