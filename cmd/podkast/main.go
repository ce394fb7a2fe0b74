package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/mediasim"
	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/reststore"
	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/config"
	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/rs/zerolog"
)

func main() {
	baseURL := flag.String("server", envOr("PODKAST_SERVER_URL", "http://127.0.0.1:8080"), "URL du serveur (ex: http://127.0.0.1:8080)")
	token := flag.String("token", envOr("PODKAST_TOKEN", ""), "Jeton de session (voir 'login')")
	timeout := flag.Duration("timeout", 10*time.Second, "Timeout HTTP")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}

	switch args[0] {
	case "health":
		get(client, *token, *baseURL+"/api/v1/health")
	case "version":
		get(client, *token, *baseURL+"/api/v1/version")
	case "shows":
		// shows [search] — filtres via variables : PODKAST_GENRE, PODKAST_SORT.
		q := ""
		if len(args) > 1 {
			q = strings.Join(args[1:], " ")
		}
		u := *baseURL + "/api/v1/shows/?search=" + urlQuery(q) +
			"&genre=" + urlQuery(os.Getenv("PODKAST_GENRE")) +
			"&sort=" + urlQuery(os.Getenv("PODKAST_SORT"))
		get(client, *token, u)
	case "show":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		get(client, *token, *baseURL+"/api/v1/shows/"+args[1])
	case "favourites":
		get(client, *token, *baseURL+"/api/v1/favourites/?sort="+urlQuery(os.Getenv("PODKAST_SORT")))
	case "login":
		// Le code à usage unique arrive dans les logs du serveur.
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		post(client, *token, *baseURL+"/api/v1/auth/otp", map[string]string{"email": args[1]})
	case "verify":
		if len(args) < 3 {
			usage()
			os.Exit(2)
		}
		post(client, *token, *baseURL+"/api/v1/auth/verify", map[string]string{"email": args[1], "code": args[2]})
	case "play":
		if len(args) < 4 {
			usage()
			os.Exit(2)
		}
		season, _ := strconv.Atoi(args[2])
		episode, _ := strconv.Atoi(args[3])
		play(client, *baseURL, *token, args[1], season, episode)
	default:
		fmt.Fprintln(os.Stderr, "Commande inconnue:", args[0])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: podkast [health|version|shows [query]|show <id>|favourites|login <email>|verify <email> <code>|play <showID> <season> <episode>]`)
}

// play pilote le tracker contre une horloge média simulée : reprise à
// la position sauvegardée, flush périodique, reset explicite.
func play(client *http.Client, baseURL, token, showID string, season, episode int) {
	if token == "" {
		fmt.Fprintln(os.Stderr, "Jeton requis (--token ou PODKAST_TOKEN)")
		os.Exit(1)
	}

	detail, err := fetchShowDetail(client, baseURL, token, showID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	ref, ok := detail.EpisodeAt(season, episode)
	if !ok {
		fmt.Fprintf(os.Stderr, "Épisode introuvable: %s S%d E%d\n", showID, season, episode)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	store := reststore.NewProgressClient(baseURL, token)
	element := mediasim.New(ref.File)
	guard := &sigGuard{}

	// L'identité est portée par le jeton ; le user id local est
	// indifférent pour le store REST.
	tracker := app.NewTracker(app.TrackerConfig{
		Logger:        logger,
		Progress:      store,
		Media:         element,
		Guard:         guard,
		FlushInterval: config.Default().FlushInterval,
	}, "session", ref)
	defer tracker.Teardown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durée simulée : pas de décodage audio, 30 min par défaut.
	element.LoadMetadata(30 * 60)
	if err := tracker.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
	}

	go element.Run(ctx, 250*time.Millisecond)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Lecture: %s — %s (S%d E%d)\n", detail.Title, ref.Title, season, episode)
	fmt.Println("Commandes: p = play/pause, r = reset, q = quitter")
	tracker.TogglePlayPause()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
		close(lines)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st := tracker.State()
			fmt.Printf("\r%s  [%s]   ", st.Position(), playState(st))
			// L'élément se met en pause seul en fin de fichier.
			if !st.Loading && element.Paused() && st.Duration > 0 && st.Offset >= st.Duration {
				fmt.Println("\nTerminé.")
				return
			}
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch line {
			case "p":
				tracker.TogglePlayPause()
			case "r":
				if err := tracker.Reset(ctx); err != nil {
					fmt.Fprintln(os.Stderr, "\nErreur:", err)
				} else {
					fmt.Println("\nProgression remise à zéro.")
				}
			case "q":
				return
			}
		case <-sigs:
			if guard.Armed() {
				fmt.Print("\nLecture en cours, quitter quand même ? [o/N] ")
				select {
				case answer := <-lines:
					if strings.EqualFold(answer, "o") || strings.EqualFold(answer, "oui") {
						return
					}
				case <-sigs:
					return
				}
				continue
			}
			return
		}
	}
}

func playState(st app.State) string {
	switch {
	case st.Loading:
		return "chargement"
	case st.Playing:
		return "lecture"
	default:
		return "pause"
	}
}

// sigGuard est le garde de fermeture : armé pendant la lecture, il
// demande confirmation avant de quitter. Best-effort uniquement.
type sigGuard struct {
	mu    sync.Mutex
	armed bool
}

func (g *sigGuard) Arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *sigGuard) Disarm() {
	g.mu.Lock()
	g.armed = false
	g.mu.Unlock()
}

func (g *sigGuard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

func fetchShowDetail(client *http.Client, baseURL, token, showID string) (domain.ShowDetail, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/shows/"+showID, nil)
	if err != nil {
		return domain.ShowDetail{}, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.ShowDetail{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ShowDetail{}, fmt.Errorf("show detail: status %d", resp.StatusCode)
	}
	var detail domain.ShowDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return domain.ShowDetail{}, err
	}
	return detail, nil
}

func get(client *http.Client, token, url string) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
		if resp.StatusCode >= 400 {
			os.Exit(1)
		}
		return
	}

	os.Stdout.Write(b)
	os.Stdout.Write([]byte("\n"))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func post(client *http.Client, token, url string, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(out, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
	} else {
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func urlQuery(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
