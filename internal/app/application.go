package app

import (
	"context"
	"fmt"

	"github.com/intizom/intizom/internal/app/auth"
	financesvc "github.com/intizom/intizom/internal/app/services/finance"
	"github.com/intizom/intizom/internal/app/services/goals"
	"github.com/intizom/intizom/internal/app/services/habits"
	"github.com/intizom/intizom/internal/app/services/notifications"
	"github.com/intizom/intizom/internal/app/services/principles"
	"github.com/intizom/intizom/internal/app/services/subscriptions"
	"github.com/intizom/intizom/internal/app/services/tasks"
	"github.com/intizom/intizom/internal/app/services/users"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/app/system"
	"github.com/intizom/intizom/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users         storage.UserStore
	Habits        storage.HabitStore
	Tasks         storage.TaskStore
	Goals         storage.GoalStore
	Finance       storage.FinanceStore
	Principles    storage.PrincipleStore
	Notifications storage.NotificationStore
}

// Options tunes application construction.
type Options struct {
	Tokens        *auth.Manager
	TrialDays     int
	SweepSchedule string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users         *users.Service
	Habits        *habits.Service
	Tasks         *tasks.Service
	Goals         *goals.Service
	Finance       *financesvc.Service
	Principles    *principles.Service
	Notifications *notifications.Service
	Subscriptions *subscriptions.Service
	Sweeper       *subscriptions.Sweeper
	Tokens        *auth.Manager
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Habits == nil {
		stores.Habits = mem
	}
	if stores.Tasks == nil {
		stores.Tasks = mem
	}
	if stores.Goals == nil {
		stores.Goals = mem
	}
	if stores.Finance == nil {
		stores.Finance = mem
	}
	if stores.Principles == nil {
		stores.Principles = mem
	}
	if stores.Notifications == nil {
		stores.Notifications = mem
	}

	manager := system.NewManager()

	userService := users.New(stores.Users, opts.Tokens, opts.TrialDays, log)
	habitService := habits.New(stores.Habits, log)
	taskService := tasks.New(stores.Tasks, log)
	goalService := goals.New(stores.Goals, log)
	financeService := financesvc.New(stores.Finance, log)
	principleService := principles.New(stores.Principles, log)
	notificationService := notifications.New(stores.Notifications, stores.Users, log)
	subscriptionService := subscriptions.New(stores.Users, log)

	for _, name := range []string{"users", "habits", "tasks", "goals", "finance", "principles"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	sweeper := subscriptions.NewSweeper(subscriptionService, log).WithNotifier(notificationService)
	if opts.SweepSchedule != "" {
		sweeper.WithSchedule(opts.SweepSchedule)
	}
	if err := manager.Register(sweeper); err != nil {
		return nil, fmt.Errorf("register %s: %w", sweeper.Name(), err)
	}

	return &Application{
		manager:       manager,
		log:           log,
		Users:         userService,
		Habits:        habitService,
		Tasks:         taskService,
		Goals:         goalService,
		Finance:       financeService,
		Principles:    principleService,
		Notifications: notificationService,
		Subscriptions: subscriptionService,
		Sweeper:       sweeper,
		Tokens:        opts.Tokens,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
