package main

import (
	"fmt"
	"log"
	"os"

	"gatherings-server/routes"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
	}

	groups := app.Party("/api/groups")
	{
		// Public share surface; no token required to view
		groups.Get("/public/{linkUid}", routes.GetPublicGroup)
		groups.Post("/public/{linkUid}/join", accessTokenVerifierMiddleware, routes.JoinPublicGroup)

		groups.Get("/", accessTokenVerifierMiddleware, routes.ListGroups)
		groups.Post("/", accessTokenVerifierMiddleware, routes.CreateGroup)
		groups.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetGroup)
		groups.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateGroup)
		groups.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteGroup)

		groups.Post("/{id:uint}/members", accessTokenVerifierMiddleware, routes.JoinGroup)
		groups.Delete("/{id:uint}/members", accessTokenVerifierMiddleware, routes.LeaveGroup)
		groups.Post("/{id:uint}/members/{userID:uint}/approve", accessTokenVerifierMiddleware, routes.ApproveMember)
		groups.Delete("/{id:uint}/members/{userID:uint}/decline", accessTokenVerifierMiddleware, routes.DeclineMember)

		groups.Get("/{id:uint}/invitations", accessTokenVerifierMiddleware, routes.ListGroupInvitations)
		groups.Post("/{id:uint}/invitations", accessTokenVerifierMiddleware, routes.CreateInvitation)

		groups.Get("/{id:uint}/events", accessTokenVerifierMiddleware, routes.ListGroupEvents)
		groups.Post("/{id:uint}/events", accessTokenVerifierMiddleware, routes.CreateEvent)
	}

	invitations := app.Party("/api/invitations")
	{
		invitations.Get("/", accessTokenVerifierMiddleware, routes.ListMyInvitations)
		invitations.Post("/{id:uint}/respond", accessTokenVerifierMiddleware, routes.RespondToInvitation)
	}

	events := app.Party("/api/events")
	{
		events.Get("/public/{linkUid}", routes.GetPublicEvent)

		events.Get("/", accessTokenVerifierMiddleware, routes.ListEvents)
		events.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetEvent)
		events.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateEvent)
		events.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteEvent)
	}

	images := app.Party("/api/images", accessTokenVerifierMiddleware)
	{
		images.Post("/", routes.CreateImage)
		images.Get("/", routes.ListImages)
		images.Get("/{id:uint}", routes.GetImage)
		images.Delete("/{id:uint}", routes.DeleteImage)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/admin", routes.AdminSetUserAdmin)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
