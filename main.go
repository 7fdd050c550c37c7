package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vesello-server/routes"
	"vesello-server/storage"
	"vesello-server/utils"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	godotenv.Load()

	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeMedia()

	app := iris.New()
	app.Validator = validator.New()

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

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

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
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/profile", accessTokenVerifierMiddleware, routes.GetUserProfile)
	}

	// Public microsite surface: no token, cancelled events answer 410
	event := app.Party("/api/event")
	{
		event.Get("/{publicID}", routes.GetPublicEvent)
	}

	gallery := app.Party("/api/gallery")
	{
		gallery.Get("/{publicID}", routes.ListGalleryItems)
	}

	// Guest-facing invitation wizard
	invitation := app.Party("/api/invitation")
	{
		invitation.Get("/{publicID}/flow", routes.GetInvitationFlow)
		invitation.Get("/{publicID}/flow/next", routes.GetNextStep)
		invitation.Get("/{publicID}/flow/previous", routes.GetPreviousStep)
		invitation.Post("/{publicID}/rsvp", routes.SubmitRSVP)
	}

	// Privileged per-event surface: every handler runs the same
	// ownership predicate against the resolved event
	events := app.Party("/api/events", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		events.Get("/{publicID}/settings", routes.GetEventSettings)
		events.Patch("/{publicID}/sections/visibility", routes.UpdateSectionVisibility)
		events.Patch("/{publicID}/sections/content", routes.UpdateSectionContent)
		events.Patch("/{publicID}/toggles", routes.UpdateFeatureToggles)
		events.Get("/{publicID}/share", routes.GetShareLink)
		events.Get("/{publicID}/qr", routes.GetEventQR)
		events.Get("/{publicID}/rsvps", routes.ListEventRSVPs)
		events.Get("/{publicID}/questions", routes.ListCustomQuestions)
		events.Post("/{publicID}/questions", routes.CreateCustomQuestion)
		events.Put("/{publicID}/questions/order", routes.ReorderCustomQuestions)
		events.Patch("/{publicID}/questions/{questionID:uint}", routes.UpdateCustomQuestion)
		events.Delete("/{publicID}/questions/{questionID:uint}", routes.DeactivateCustomQuestion)
		events.Post("/{publicID}/gallery", routes.UploadGalleryItem)
		events.Delete("/{publicID}/gallery/{itemID:uint}", routes.DeleteGalleryItem)
	}

	// Superadmin surface
	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.SuperAdminOnlyMiddleware)
	{
		admin.Get("/events", routes.AdminListEvents)
		admin.Post("/events", routes.AdminCreateEvent)
		admin.Post("/events/{publicID}/organizer", routes.AdminAssignOrganizer)
		admin.Patch("/events/{publicID}/status", routes.AdminUpdateEventStatus)
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", routes.AdminChangeUserRole)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Info().Str("port", port).Msg("starting server")
	app.Listen(":" + port)
}
