package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-pms/internal/access"
	common_api "go-pms/internal/common/api"
	"go-pms/internal/config"
	"go-pms/internal/database"
	"go-pms/internal/features/audit"
	cron_feature "go-pms/internal/features/cron"
	"go-pms/internal/features/notification"
	"go-pms/internal/features/organization"
	"go-pms/internal/features/payment"
	"go-pms/internal/features/permission"
	"go-pms/internal/features/property"
	"go-pms/internal/features/rent"
	"go-pms/internal/features/system"
	"go-pms/internal/features/user"
	"go-pms/internal/logger"
	"go-pms/internal/middleware"
	"go-pms/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds its result to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the "routes" group and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down with the app.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures database indexes in the background on startup.
// The rent index is the occupancy guard, so its failure is logged loudly.
func InitializeIndexes(
	lc fx.Lifecycle,
	zlog *zap.Logger,
	userRepo user.UserRepository,
	propertyRepo property.PropertyRepository,
	rentRepo rent.RentRepository,
	paymentRepo payment.PaymentRepository,
	notificationRepo notification.NotificationRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := rentRepo.EnsureIndexes(ctx); err != nil {
					zlog.Error("rent index creation failed, occupancy guard inactive", zap.Error(err))
				}
				if err := userRepo.EnsureIndexes(ctx); err != nil {
					zlog.Warn("user index creation failed", zap.Error(err))
				}
				if err := propertyRepo.EnsureIndexes(ctx); err != nil {
					zlog.Warn("property index creation failed", zap.Error(err))
				}
				if err := paymentRepo.EnsureIndexes(ctx); err != nil {
					zlog.Warn("payment index creation failed", zap.Error(err))
				}
				if err := notificationRepo.EnsureIndexes(ctx); err != nil {
					zlog.Warn("notification index creation failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// actorFinderAdapter projects user records into the minimal actor shape the
// audit reader needs.
type actorFinderAdapter struct {
	repo user.UserRepository
}

func (a *actorFinderAdapter) FindByIDs(ctx context.Context, ids []string) ([]audit.ActorRef, error) {
	users, err := a.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	refs := make([]audit.ActorRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, audit.ActorRef{ID: u.ID, Username: u.Username})
	}
	return refs, nil
}

// managerDirectoryAdapter exposes the user repository to the property
// feature without a package dependency between the two.
type managerDirectoryAdapter struct {
	repo user.UserRepository
}

func (a *managerDirectoryAdapter) Manager(ctx context.Context, userID string) (*property.ManagerRef, error) {
	u, err := a.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &property.ManagerRef{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		RoleID:         u.RoleID,
	}, nil
}

func (a *managerDirectoryAdapter) AddAssignedProperty(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return a.repo.AddAssignedProperty(ctx, userID, propertyID)
}

func (a *managerDirectoryAdapter) RemoveAssignedProperty(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return a.repo.RemoveAssignedProperty(ctx, userID, propertyID)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Permission table and scope resolution
			permission.NewRegistry,
			permission.NewResolver,
			access.NewGateway,

			// Repositories
			audit.NewAuditRepository,
			organization.NewOrganizationRepository,
			user.NewUserRepository,
			property.NewPropertyRepository,
			rent.NewRentRepository,
			payment.NewPaymentRepository,
			notification.NewNotificationRepository,

			// Services
			audit.NewAuditService,
			organization.NewOrganizationService,
			user.NewUserService,
			property.NewPropertyService,
			rent.NewRentService,
			payment.NewPaymentService,
			notification.NewHub,
			notification.NewNotificationService,
			cron_feature.NewSweeperService,

			// Interface adapters
			func(r user.UserRepository) audit.UserFinder { return &actorFinderAdapter{repo: r} },
			func(r user.UserRepository) property.ManagerDirectory { return &managerDirectoryAdapter{repo: r} },
			func(r rent.RentRepository) property.AssignmentChecker { return r },
			func(s user.UserService) middleware.AccessContextBuilder { return s },
			func(s notification.NotificationService) rent.Notifier { return s },
			func(s notification.NotificationService) payment.Notifier { return s },
			func(s notification.NotificationService) cron_feature.Notifier { return s },

			// Controllers
			permission.NewPermissionController,
			audit.NewAuditController,
			organization.NewOrganizationController,
			user.NewUserController,
			property.NewPropertyController,
			rent.NewRentController,
			payment.NewPaymentController,
			notification.NewNotificationController,

			// API routes
			AsRoute(permission.NewPermissionApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(organization.NewOrganizationApi),
			AsRoute(user.NewUserApi),
			AsRoute(property.NewPropertyApi),
			AsRoute(rent.NewRentApi),
			AsRoute(payment.NewPaymentApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, sweeper cron_feature.SweeperService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sweeper.InitializeScheduler()
					},
					OnStop: func(ctx context.Context) error {
						sweeper.StopScheduler()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
