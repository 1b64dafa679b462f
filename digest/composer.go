package digest

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"tagdigest/models"
)

// DefaultTopN is how many posts a digest lists
const DefaultTopN = 5

const unknown = "unknown"

var digestTemplate = template.Must(template.New("digest").Parse(`Tag do dia: #{{.Hashtag}}

Uso da tag na semana: {{.TotalUses}}
Participantes: {{.Participants}}
Posts hoje: {{.PostsToday}}

Principais posts de hoje:

{{range .Posts}}Publicado por {{.Username}}
Seguidores: {{.Followers}}
⭐ {{.Favourites}} 🔄 {{.Boosts}} 📈 {{.Score}}
🔗 {{.Link}}

{{end}}`))

type digestView struct {
	Hashtag      string
	TotalUses    int64
	Participants string
	PostsToday   string
	Posts        []postView
}

type postView struct {
	Username   string
	Followers  int64
	Favourites int64
	Boosts     int64
	Score      string
	Link       string
}

// Composer renders digest text
type Composer struct {
	baseURL string
	topN    int
}

// NewComposer returns a composer linking posts on baseURL
func NewComposer(baseURL string, topN int) *Composer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Composer{
		baseURL: strings.TrimRight(baseURL, "/"),
		topN:    topN,
	}
}

// Compose renders the digest for hashtag from the top scored posts. today is
// the most recent usage entry and may be nil. It returns false when there is
// nothing to publish: no hashtag or no posts.
func (c *Composer) Compose(hashtag string, today *models.TagHistory, posts []ScoredPost, totalUses int64) (string, bool) {
	if hashtag == "" || len(posts) == 0 {
		return "", false
	}

	top := lo.Subset(Rank(posts), 0, uint(c.topN))

	view := digestView{
		Hashtag:      hashtag,
		TotalUses:    totalUses,
		Participants: unknown,
		PostsToday:   unknown,
		Posts: lo.Map(top, func(post ScoredPost, _ int) postView {
			return postView{
				Username:   post.Username(),
				Followers:  post.Account.Followers(),
				Favourites: post.Favourites(),
				Boosts:     post.Reblogs(),
				Score:      strconv.FormatFloat(post.RelevanceScore, 'f', -1, 64),
				Link:       c.Link(post.ID),
			}
		}),
	}
	if today != nil {
		if today.Accounts != "" {
			view.Participants = string(today.Accounts)
		}
		if today.Uses != "" {
			view.PostsToday = string(today.Uses)
		}
	}

	var sb strings.Builder
	if err := digestTemplate.Execute(&sb, view); err != nil {
		log.WithFields(log.Fields{
			"tag":   hashtag,
			"error": err,
		}).Error("Failed to render digest")
		return "", false
	}
	return sb.String(), true
}

// Link is the web permalink of a status on the instance
func (c *Composer) Link(statusID string) string {
	return c.baseURL + "/web/statuses/" + statusID
}
