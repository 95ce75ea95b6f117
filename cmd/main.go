package main

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"openfeed/pkg/comments"
	"openfeed/pkg/feed"
	"openfeed/pkg/logger"
	"openfeed/pkg/middleware"
	"openfeed/pkg/post"
	"openfeed/pkg/postactions"
	"openfeed/pkg/postcache"
	"openfeed/pkg/profile"
	profileapi "openfeed/pkg/profile/api"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
	"openfeed/pkg/sessions"
)

type EnvConfig map[string]string

func init() {
	rand.Seed(time.Now().UnixNano())
}

// postSource serves hydrated posts from the mongo cache and falls back to
// the protocol, caching what it fetched.
type postSource struct {
	cache  *postcache.Repo
	client protocol.Client
}

func (s postSource) GetById(ctx context.Context, id post.Id) (*post.Post, error) {
	if p, err := s.cache.GetById(ctx, id); err == nil {
		return p, nil
	}
	p, err := s.client.FetchPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Upsert(ctx, p); err != nil {
		logger.Log(ctx).Errorf("main: can't cache post %s: %v", id, err)
	}
	return p, nil
}

func main() {
	var cfg EnvConfig = readDotenv()

	db, err := sql.Open("pgx", "postgresql://localhost/"+cfg["POSTGRES_DB"]+"?sslmode=disable")
	if err != nil {
		log.Printf("Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("unable to reach PostgreSQL: %v", err)
	}

	redisConn, err := redis.DialURL(cfg["REDIS_ADDR"])
	if err != nil {
		log.Fatalf("main: can't connect to Redis")
	}

	mongoCtx, mongoCtxCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer mongoCtxCancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg["MONGODB_URI"]))
	if err != nil {
		log.Fatalln("main: can't connect to MongoDB,", err)
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		log.Fatalln("main: unable to connect to MongoDB,", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(mongoCtx); err != nil {
			log.Fatalln("main: failed disconnecting from MongoDB, ", err)
		}
	}()

	appAddress := cfg["APP_ADDRESS"]
	protocolToken := cfg["PROTOCOL_TOKEN"]
	client := protocol.NewHTTPClient(cfg["PROTOCOL_API_URL"], func(ctx context.Context) string {
		return protocolToken
	})

	postsCol := mongoClient.Database("openfeed").Collection("posts")
	cache := postcache.NewPostCache(postsCol)
	profilesRepo := profile.NewProfileRepo(db)
	sessionManager := sessions.NewSessionManager(cfg["SECRET_KEY"], redisConn)

	store := poststate.NewStore()
	paginator := feed.NewPaginator(client, store, appAddress)
	monitor := feed.NewMonitor(paginator)

	// Generate fake content to have better UI experience
	// seed(profilesRepo, cache, appAddress)

	// Initial load of the global feed, then background staleness polling.
	go func() {
		ctx := context.Background()
		if err := paginator.Load(ctx, protocol.PostsFilter{Apps: []string{appAddress}}); err != nil {
			log.Println("main: initial feed load failed:", err)
		}
		monitor.Start(ctx)
	}()
	defer monitor.Stop()

	feedHandler := feed.NewFeedHandler(paginator, monitor)
	actionsHandler := postactions.NewHandler(store, client, sessionManager, postSource{cache: cache, client: client})
	commentsHandler := comments.NewHandler(client, store)
	authHandler := profileapi.NewAuthHandler(profilesRepo, sessionManager)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Feed
	api.HandleFunc("/feed", feedHandler.List).Methods("GET")
	api.HandleFunc("/feed", feedHandler.Load).Methods("POST")
	api.HandleFunc("/feed/refresh", feedHandler.Refresh).Methods("POST")
	api.HandleFunc("/feed/more", feedHandler.LoadMore).Methods("POST")
	api.HandleFunc("/feed/new", feedHandler.LoadNew).Methods("POST")
	api.HandleFunc("/feed/focus", feedHandler.Focus).Methods("POST")

	// Post actions
	api.HandleFunc("/post/{post_id}/state", actionsHandler.State).Methods("GET")
	api.HandleFunc("/post/{post_id}/like", actionsHandler.Like).Methods("POST")
	api.HandleFunc("/post/{post_id}/bookmark", actionsHandler.Bookmark).Methods("POST")
	api.HandleFunc("/post/{post_id}/comment-sheet", actionsHandler.CommentSheet).Methods("POST")
	api.HandleFunc("/post/{post_id}/collect-sheet", actionsHandler.CollectSheet).Methods("POST")

	// Comments
	api.HandleFunc("/post/{post_id}/comments", commentsHandler.List).Methods("GET")
	api.HandleFunc("/post/{post_id}/comments/more", commentsHandler.LoadMore).Methods("POST")
	api.HandleFunc("/post/{post_id}/comments/refresh", commentsHandler.Refresh).Methods("POST")

	// Wallet auth
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.LogIn).Methods("POST")

	auth := middleware.NewAuthMiddleware(sessionManager, profilesRepo)
	r.Use(auth.Middleware)

	logMiddleware := middleware.NewLoggingMiddleware(logger.Run(cfg["LOG_LEVEL"]))
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)

	log.Println("Serving at http://localhost:8080/")
	log.Fatalln(http.ListenAndServe(":8080", r))
}

func readDotenv() EnvConfig {
	env, err := godotenv.Read()
	if err != nil {
		log.Fatal("failed reading .env file:", err)
	}
	return env
}
