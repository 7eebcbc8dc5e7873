package main

import (
	"context"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"bhokexpress/internal/config"
	"bhokexpress/internal/domain/checkout"
	"bhokexpress/internal/domain/model"
	"bhokexpress/internal/domain/pricing"
	"bhokexpress/internal/handler"
	"bhokexpress/internal/infra/cartstore"
	"bhokexpress/internal/infra/db"
	infraRepo "bhokexpress/internal/infra/repository"
	"bhokexpress/internal/server"
	"bhokexpress/internal/usecase"
	"bhokexpress/internal/validator"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//ローカル開発用。無ければそのまま環境変数を使う
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Restaurant{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//カート置き場（Redis）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	cartStore := cartstore.NewRedisCartStore(redisClient)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	restaurantRepo := infraRepo.NewRestaurantGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//ドメイン部品
	calc := pricing.NewCalculator(cfg.DiscountRate)
	checkoutValidator := checkout.NewValidator(cfg.CODCeiling, validator.IsValidNepaliPhone)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}
	refreshTTL := 14 * 24 * time.Hour

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, rtRepo, cartStore, hasher, verifier, issuer, idGen, clock, refreshTTL)
	fdUC := usecase.NewFreeDeliveryUsecase(userRepo)
	restaurantUC := usecase.NewRestaurantUsecase(restaurantRepo, productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo, restaurantRepo, userRepo, calc)
	orderUC := usecase.NewOrderUsecase(txManager, cartStore, calc, checkoutValidator)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC, fdUC, refreshTTL, cfg.GoEnv != "dev"),
		Restaurant: handler.NewRestaurantHandler(restaurantUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
	}

	e := server.New(cfg, handlers, userRepo)

	//SIGINT/SIGTERMで猶予付き停止
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Start(ctx, e, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
