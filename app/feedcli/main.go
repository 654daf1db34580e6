// Command feedcli is a terminal stand-in for the mobile presentation
// layer: it renders the feed and feeds gestures into the controllers.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/petresgate/feedcore/domain"
	"github.com/petresgate/feedcore/internal/api"
	"github.com/petresgate/feedcore/internal/feed"
	"github.com/petresgate/feedcore/internal/like"
	"github.com/petresgate/feedcore/internal/session"
	"github.com/petresgate/feedcore/internal/snapshot"
)

const (
	defaultAPIURL      = "http://localhost:3000"
	defaultSessionPath = "feedcli-session.db"
)

func init() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using environment")
	}
}

// cliPresenter prints what the app would animate.
type cliPresenter struct{}

func (cliPresenter) Navigate(publicationID int64) {
	fmt.Printf(">> opening publication %d\n", publicationID)
}

func (cliPresenter) ShowHeart(publicationID int64) {
	fmt.Printf("<3 publication %d\n", publicationID)
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	sessionPath := os.Getenv("SESSION_DB")
	if sessionPath == "" {
		sessionPath = defaultSessionPath
	}

	sess, err := session.Open(sessionPath)
	if err != nil {
		logrus.Fatalf("could not open session storage: %v", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logrus.Errorf("failed to close session storage: %v", err)
		}
	}()

	client := api.NewClient(apiURL, sess, 0)

	var snapStore domain.SnapshotStore = snapshot.NewMemoryStore()
	if cacheHost := os.Getenv("CACHE_HOST"); cacheHost != "" {
		cachePort := os.Getenv("CACHE_PORT")
		if cachePort == "" {
			cachePort = "6379"
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cacheHost + ":" + cachePort,
			Password: os.Getenv("CACHE_PASS"),
		})
		defer rdb.Close()
		snapStore = snapshot.NewRedisStore(rdb, 0)
	}

	feedCtrl := feed.NewController(client, client, snapStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{
		ctx:         ctx,
		feed:        feedCtrl,
		likes:       client,
		session:     sess,
		controllers: map[int64]*like.Controller{},
	}
	defer app.closeControllers()

	fmt.Println("commands: login <id> [token] | logout | load [asc|desc] | refresh | search <q> | tap <id> | dtap <id> | like <id> | new <status>;<location>;<description>;<image,...> | state | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		app.dispatch(line)
	}
}

type cli struct {
	ctx         context.Context
	feed        *feed.Controller
	likes       domain.LikeService
	session     *session.Store
	controllers map[int64]*like.Controller
}

func (a *cli) dispatch(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "login":
		a.login(args)
	case "logout":
		if err := a.session.Clear(); err != nil {
			logrus.Errorf("logout failed: %v", err)
		}
	case "load":
		ordering := domain.OrderDesc
		if len(args) > 0 && args[0] == "asc" {
			ordering = domain.OrderAsc
		}
		pubs, err := a.feed.Load(a.ctx, ordering)
		a.rebuild(pubs, err)
	case "refresh":
		pubs, err := a.feed.Refresh(a.ctx)
		a.rebuild(pubs, err)
	case "search":
		pubs, err := a.feed.Search(a.ctx, strings.Join(args, " "))
		a.rebuild(pubs, err)
	case "tap":
		if c := a.controller(args); c != nil {
			c.Tap()
		}
	case "dtap":
		if c := a.controller(args); c != nil {
			c.Tap()
			c.Tap()
		}
	case "like":
		if c := a.controller(args); c != nil {
			if err := c.Toggle(); err != nil {
				logrus.Warnf("toggle failed: %v", err)
			}
		}
	case "new":
		a.create(strings.Join(args, " "))
	case "state":
		fmt.Printf("feed: %s\n", a.feed.State())
		a.render(a.feed.Publications())
	default:
		fmt.Println("unknown command:", cmd)
	}
}

func (a *cli) login(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: login <userId> [token]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("bad user id:", args[0])
		return
	}
	if err := a.session.SetUserID(id); err != nil {
		logrus.Errorf("login failed: %v", err)
		return
	}
	if len(args) > 1 {
		if err := a.session.SetToken(args[1]); err != nil {
			logrus.Errorf("failed to store token: %v", err)
		}
	}
}

func (a *cli) controller(args []string) *like.Controller {
	if len(args) < 1 {
		fmt.Println("publication id required")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("bad publication id:", args[0])
		return nil
	}
	c, ok := a.controllers[id]
	if !ok {
		fmt.Println("no such publication on screen:", id)
		return nil
	}
	return c
}

// rebuild mirrors a wholesale list replacement: the old per-item
// controllers unmount and fresh ones attach to the new records.
func (a *cli) rebuild(pubs []domain.Publication, err error) {
	if err != nil {
		logrus.Warnf("feed request failed: %v", err)
		fmt.Println("feed unavailable, showing last loaded list")
		return
	}
	a.closeControllers()
	for _, p := range pubs {
		c := like.NewController(p.ID, p.LikeCount, a.likes, a.session, cliPresenter{}, like.DefaultConfig())
		c.Start(a.ctx)
		a.controllers[p.ID] = c
	}
	a.render(pubs)
}

func (a *cli) closeControllers() {
	for id, c := range a.controllers {
		c.Close()
		delete(a.controllers, id)
	}
}

func (a *cli) render(pubs []domain.Publication) {
	if len(pubs) == 0 {
		fmt.Println("no publications")
		return
	}
	for _, p := range pubs {
		liked, count := "", p.LikeCount
		if c, ok := a.controllers[p.ID]; ok {
			l, n := c.State()
			count = n
			if l {
				liked = " (liked)"
			}
		}
		fmt.Printf("#%d [%s] %s - %s | %d likes%s | %s | by %s\n",
			p.ID, p.Status, trim(p.Description, 48), p.Location,
			count, liked, p.CreatedAt.Format(time.RFC3339), p.User.Name)
	}
}

func (a *cli) create(raw string) {
	parts := strings.SplitN(raw, ";", 4)
	if len(parts) < 4 {
		fmt.Println("usage: new <status>;<location>;<description>;<image,...>")
		return
	}
	userID, err := a.session.UserID()
	if err != nil {
		fmt.Println("login first:", err)
		return
	}
	np := &domain.NewPublication{
		Status:      strings.TrimSpace(parts[0]),
		Location:    strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
		Images:      splitImages(parts[3]),
		UserID:      userID,
	}
	client, ok := a.likes.(*api.Client)
	if !ok {
		return
	}
	stored, err := client.Create(a.ctx, np)
	if err != nil {
		logrus.Warnf("create failed: %v", err)
		return
	}
	fmt.Printf("created publication #%d\n", stored.ID)
}

func splitImages(raw string) []string {
	var images []string
	for _, img := range strings.Split(raw, ",") {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	return images
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
