package server

import (
	"flag"
	"fmt"
	"time"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/geofence"
	"civicfix/backend/rabbitmq"
	"civicfix/backend/ws"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	EndPointHelp         = "/help"
	EndPointHealth       = "/health"
	EndPointRegister     = "/auth/register"
	EndPointLogin        = "/auth/login"
	EndPointMe           = "/me"
	EndPointCategories   = "/categories"
	EndPointReports      = "/reports"
	EndPointMyReports    = "/my_reports"
	EndPointReport       = "/reports/:id"
	EndPointUpvote       = "/reports/:id/upvote"
	EndPointDownvote     = "/reports/:id/downvote"
	EndPointReportAbuse  = "/reports/:id/report"
	EndPointAbuseInfo    = "/reports/:id/reports"
	EndPointStatus       = "/reports/:id/status"
	EndPointAfterImage   = "/reports/:id/after_image"
	EndPointClearReports = "/reports/:id/clear_reports"
	EndPointFlagged      = "/admin/flagged"
	EndPointStats        = "/admin/stats"
	EndPointGetMap       = "/get_map"
	EndPointLive         = "/ws/live"
)

var (
	serverPort    = flag.Int("port", 8080, "The port used by the service.")
	jwtSecret     = flag.String("jwt_secret", "", "Secret used to sign access tokens.")
	boundaryFile  = flag.String("boundary_file", "", "GeoJSON polygon with the service area. Empty means the built-in campus boundary.")
	amqpURL       = flag.String("amqp_url", "", "RabbitMQ connection URL. Empty disables event publishing.")
	amqpExchange  = flag.String("amqp_exchange", "civicfix_events", "RabbitMQ exchange for report events.")
	flagThreshold = flag.Int("flag_threshold", db.DefaultFlagThreshold, "Abuse report count at which a report is considered flagged.")
	authRPS       = flag.Float64("auth_rps", 5, "Per-IP request rate for the auth endpoints.")
)

// Campus boundary used when no boundary file is configured.
var defaultBoundary = []geofence.Vertex{
	{Lat: 19.022028, Lon: 72.869722},
	{Lat: 19.021528, Lon: 72.872333},
	{Lat: 19.0211667, Lon: 72.8722222},
	{Lat: 19.020861, Lon: 72.871222},
	{Lat: 19.0205556, Lon: 72.8705556},
	{Lat: 19.020833, Lon: 72.869556},
}

var (
	authService *auth.Service
	fence       *geofence.Fence
	hub         *ws.Hub
	publisher   *rabbitmq.Publisher
)

func loadFence() (*geofence.Fence, error) {
	if *boundaryFile != "" {
		return geofence.FromGeoJSONFile(*boundaryFile)
	}
	return geofence.New(defaultBoundary)
}

func StartService() {
	log.Info("Starting the service...")

	dbc, err := getServerDB()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer closeServerDB()

	if err := db.InitSchema(dbc); err != nil {
		log.Fatalf("Failed to initialize the schema: %v", err)
	}

	fence, err = loadFence()
	if err != nil {
		log.Fatalf("Failed to load the service boundary: %v", err)
	}

	if *jwtSecret == "" {
		log.Fatal("-jwt_secret is required")
	}
	authService = auth.NewService(dbc, *jwtSecret)

	if *amqpURL != "" {
		publisher, err = rabbitmq.NewPublisher(*amqpURL, *amqpExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Warn("No -amqp_url given, event publishing is disabled")
	}

	hub = ws.NewHub()
	go hub.Run()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(EndPointHelp, Help)
	router.GET(EndPointHealth, Health)
	router.GET(EndPointCategories, GetCategories)
	router.GET(EndPointReports, ListReports)
	router.POST(EndPointGetMap, GetMap)

	authLimited := router.Group("/", auth.RateLimit(rate.Limit(*authRPS), int(2**authRPS)))
	authLimited.POST(EndPointRegister, Register)
	authLimited.POST(EndPointLogin, Login)

	authed := router.Group("/", auth.Middleware(authService))
	authed.GET(EndPointMe, Me)
	authed.GET(EndPointMyReports, MyReports)
	authed.GET(EndPointReport, ReadReport)
	authed.POST(EndPointReports, CreateReport)
	authed.POST(EndPointUpvote, Upvote)
	authed.POST(EndPointDownvote, Downvote)
	authed.POST(EndPointReportAbuse, ReportAbuse)
	authed.GET(EndPointAbuseInfo, AbuseInfo)
	authed.DELETE(EndPointReport, DeleteReport)
	authed.GET(EndPointLive, Live)

	admin := authed.Group("/", auth.RequireAdmin())
	admin.PUT(EndPointStatus, SetStatus)
	admin.PUT(EndPointAfterImage, AttachAfterImage)
	admin.POST(EndPointClearReports, ClearAbuseReports)
	admin.GET(EndPointFlagged, ListFlagged)
	admin.GET(EndPointStats, GetStats)

	router.Run(fmt.Sprintf(":%d", *serverPort))
	log.Info("Finished the service. Should not ever being seen.")
}
