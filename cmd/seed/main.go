package main

import (
	"context"

	"go-pms/internal/config"
	"go-pms/internal/database"
	"go-pms/internal/features/organization"
	"go-pms/internal/features/permission"
	"go-pms/internal/features/property"
	"go-pms/internal/features/user"
	"go-pms/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedOrgName       = "Demo Properties Ltd"
	seedAdminUsername = "admin"
	seedAdminPassword = "admin12345"
)

// Seed bootstraps an organization, a super admin account and two demo
// properties, then shuts the app down.
func Seed(
	lc fx.Lifecycle,
	orgRepo organization.OrganizationRepository,
	userRepo user.UserRepository,
	propertyRepo property.PropertyRepository,
	registry *permission.Registry,
	zlog *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						zlog.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				zlog.Info("Starting database seeding")

				orgID, err := seedOrganization(ctx, orgRepo, zlog)
				if err != nil {
					zlog.Fatal("Organization seeding failed", zap.Error(err))
				}

				if err := seedSuperAdmin(ctx, userRepo, registry, orgID, zlog); err != nil {
					zlog.Fatal("Admin seeding failed", zap.Error(err))
				}

				if err := seedDemoProperties(ctx, propertyRepo, orgID, zlog); err != nil {
					zlog.Fatal("Property seeding failed", zap.Error(err))
				}

				zlog.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func seedOrganization(ctx context.Context, repo organization.OrganizationRepository, zlog *zap.Logger) (primitive.ObjectID, error) {
	existing, err := repo.List(ctx)
	if err == nil {
		for _, org := range existing {
			if org.Name == seedOrgName {
				zlog.Info("Organization exists, skipping", zap.String("organization", seedOrgName))
				return org.ID, nil
			}
		}
	}

	org := &organization.Organization{
		Name:   seedOrgName,
		Type:   "landlord",
		Status: organization.StatusActive,
		Settings: organization.Settings{
			Currency: "UGX",
			Timezone: "Africa/Kampala",
		},
	}
	if err := repo.Create(ctx, org); err != nil {
		return primitive.NilObjectID, err
	}

	zlog.Info("Organization created", zap.String("organization", seedOrgName))
	return org.ID, nil
}

func seedSuperAdmin(ctx context.Context, repo user.UserRepository, registry *permission.Registry, orgID primitive.ObjectID, zlog *zap.Logger) error {
	if existing, _ := repo.FindByUsername(ctx, seedAdminUsername); existing != nil {
		zlog.Info("Admin exists, skipping", zap.String("username", seedAdminUsername))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &user.User{
		Username:       seedAdminUsername,
		Password:       string(hashed),
		Email:          "admin@example.com",
		Status:         user.StatusActive,
		RoleID:         permission.RoleSuperAdmin,
		OrganizationID: orgID,
		Permissions:    registry.PermissionsFor(permission.RoleSuperAdmin),
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}

	zlog.Info("Super admin created", zap.String("username", seedAdminUsername))
	return nil
}

func seedDemoProperties(ctx context.Context, repo property.PropertyRepository, orgID primitive.ObjectID, zlog *zap.Logger) error {
	existing, _, err := repo.List(ctx, map[string]interface{}{"organizationId": orgID}, 1, 0)
	if err == nil && len(existing) > 0 {
		zlog.Info("Demo properties exist, skipping")
		return nil
	}

	building := &property.Property{
		OrganizationID:   orgID,
		Type:             property.TypeBuilding,
		AssignedManagers: []primitive.ObjectID{},
		Status:           "active",
		Location: property.Location{
			Village:   "Kisenyi",
			Parish:    "Central",
			SubCounty: "Kampala Central",
			County:    "Kampala",
			District:  "Kampala",
			Landmarks: "Opposite the main taxi park",
		},
		Caretaker: &property.Caretaker{Name: "John Okello", Phone: "+256700000001"},
		BuildingDetails: &property.BuildingDetails{
			BuildingType:   "commercial",
			NumberOfFloors: 2,
			Floors: []property.Floor{
				{
					FloorNumber: 0,
					FloorName:   "Ground Floor",
					Spaces: []property.Space{
						{SpaceID: "G-01", SpaceName: "Shop 1", SpaceType: "shop", MonthlyRent: 450000, Size: "12sqm", Status: property.SpaceStatusVacant},
						{SpaceID: "G-02", SpaceName: "Shop 2", SpaceType: "shop", MonthlyRent: 500000, Size: "15sqm", Status: property.SpaceStatusVacant},
					},
				},
				{
					FloorNumber: 1,
					FloorName:   "Floor 1",
					Spaces: []property.Space{
						{SpaceID: "F1-01", SpaceName: "Office 1", SpaceType: "office", MonthlyRent: 650000, Size: "20sqm", Status: property.SpaceStatusVacant},
					},
				},
			},
			TotalRentableSpaces: 3,
		},
	}
	if err := repo.Create(ctx, building); err != nil {
		return err
	}

	land := &property.Property{
		OrganizationID:   orgID,
		Type:             property.TypeLand,
		AssignedManagers: []primitive.ObjectID{},
		Status:           "active",
		Location: property.Location{
			Village:   "Namugongo",
			Parish:    "Kira",
			SubCounty: "Kira",
			County:    "Wakiso",
			District:  "Wakiso",
		},
		LandDetails: &property.LandDetails{
			TotalArea: "2 acres",
			LandUse:   "mixed",
			Squatters: []property.Squatter{
				{SquatterID: "SQ-01", SquatterName: "Mary Auma", AssignedArea: "North plot", AreaSize: "0.5 acres", MonthlyPayment: 150000, AgreementDate: "2024-03-01", Status: property.SpaceStatusVacant},
			},
			TotalSquatters: 1,
		},
	}
	if err := repo.Create(ctx, land); err != nil {
		return err
	}

	zlog.Info("Demo properties created")
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			permission.NewRegistry,
			organization.NewOrganizationRepository,
			user.NewUserRepository,
			property.NewPropertyRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
