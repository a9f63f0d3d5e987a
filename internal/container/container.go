package container

import (
	"context"

	"skillbridge-api/internal/config"
	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/realtime"
	"skillbridge-api/internal/repository"
	"skillbridge-api/internal/service"
	"skillbridge-api/internal/service/auth"
	"skillbridge-api/pkg/database"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *database.PostgresDB
	Redis      *redis.Client
	KeyBuilder *redis.KeyBuilder

	ProfileRepo    repository.ProfileRepository
	OccupationRepo repository.OccupationRepository
	SkillRepo      repository.SkillRepository
	GoalRepo       repository.GoalRepository
	MessageRepo    repository.MessageRepository
	AdminRepo      repository.AdminRepository

	AuthService  service.AuthService
	Accounts     *service.AccountService
	Reconciler   *service.ReconcilerService
	Roles        service.RoleResolver
	Sessions     *service.SessionStore
	PendingStore service.PendingProfileStore
	Matching     *service.MatchingService
	Assessments  *service.AssessmentService
	Community    *service.CommunityService
	Admin        *service.AdminService
	Stats        *service.StatsService

	Listener *realtime.Listener
}

// New wires the full dependency graph
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	keyBuilder := redis.NewKeyBuilder(cfg.Environment)

	profileRepo := repository.NewProfileRepository(db)
	occupationRepo := repository.NewOccupationRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	adminRepo := repository.NewAdminRepository(db, log)

	authService := auth.NewService(cfg.SupabaseJWTSecret, log)
	supabaseClient := auth.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, log)

	pendingStore := service.NewPendingProfileStore(redisClient, keyBuilder, log)
	reconciler := service.NewReconcilerService(profileRepo, pendingStore, log)
	roles := service.NewRoleResolver(profileRepo, redisClient, keyBuilder, log)

	// The server boots with no ambient session; the store settles on
	// signed-out until the first auth event arrives.
	resolver := service.SessionResolverFunc(func(ctx context.Context) (*domain.SessionUser, error) {
		return nil, nil
	})
	sessions := service.NewSessionStore(resolver, roles, reconciler, cfg.SessionResolveTimeout, log)

	accounts := service.NewAccountService(supabaseClient, pendingStore, reconciler, roles, sessions, profileRepo, log)
	matching := service.NewMatchingService(occupationRepo, profileRepo, skillRepo, redisClient, keyBuilder, log)
	assessments := service.NewAssessmentService(skillRepo, occupationRepo, profileRepo, goalRepo, log)
	community := service.NewCommunityService(messageRepo, profileRepo, log)
	admin := service.NewAdminService(adminRepo, profileRepo, skillRepo, goalRepo, occupationRepo, redisClient, keyBuilder, log)
	stats := service.NewStatsService(skillRepo, occupationRepo, profileRepo, redisClient, keyBuilder, log)

	listener := realtime.NewListener(db.Pool, log)

	return &Container{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Redis:      redisClient,
		KeyBuilder: keyBuilder,

		ProfileRepo:    profileRepo,
		OccupationRepo: occupationRepo,
		SkillRepo:      skillRepo,
		GoalRepo:       goalRepo,
		MessageRepo:    messageRepo,
		AdminRepo:      adminRepo,

		AuthService:  authService,
		Accounts:     accounts,
		Reconciler:   reconciler,
		Roles:        roles,
		Sessions:     sessions,
		PendingStore: pendingStore,
		Matching:     matching,
		Assessments:  assessments,
		Community:    community,
		Admin:        admin,
		Stats:        stats,

		Listener: listener,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDatabase returns the database wrapper
func (c *Container) GetDatabase() *database.PostgresDB {
	return c.DB
}

// GetRedis returns the Redis client
func (c *Container) GetRedis() *redis.Client {
	return c.Redis
}
