package seed

import (
	"fmt"
	"strings"

	"breakroom/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

const postsPerUser = 4

var (
	teams = []string{"engineering", "platform", "design", "support", "data"}
	moods = []string{"chaotic", "wholesome", "deadpan", "unhinged", "smug"}

	tagPool = []string{
		"oncall", "meetings", "devops", "golang", "reviews",
		"standup", "deploys", "legacy", "coffee", "remote",
	}

	memeTemplates = []string{
		"me explaining to %s why the %s is actually fine",
		"nobody:\nabsolutely nobody:\nthe %s at 4:59pm: %s",
		"when the %s passes locally but the %s has other plans",
		"day 3 of pretending the %s warning in %s is intentional",
		"the %s said it would take five minutes. the %s disagreed",
	}

	spoilerTemplates = []string{
		"finally watched the release retro recording. turns out ||%s||",
		"asked who broke staging and ||%s||, pretend to be surprised",
	}
)

// demoUsers returns the fixed personas every demo environment starts with.
// The first entry is the admin.
func demoUsers(hashedPassword string) []models.User {
	return []models.User{
		{Email: "mod@breakroom.dev", Password: hashedPassword, Name: "Morgan the Mod", Team: "platform", Role: models.RoleAdmin},
		{Email: "sam@breakroom.dev", Password: hashedPassword, Name: "Sam from Support", Team: "support", Role: models.RoleUser},
		{Email: "devin@breakroom.dev", Password: hashedPassword, Name: "Devin DevOps", Team: "engineering", Role: models.RoleUser},
		{Email: "dana@breakroom.dev", Password: hashedPassword, Name: "Dana from Data", Team: "data", Role: models.RoleUser},
		{Email: "quinn@breakroom.dev", Password: hashedPassword, Name: "Quinn the Designer", Team: "design", Role: models.RoleUser},
	}
}

// randomPost builds a meme post authored by the given user. Roughly one in
// five bodies carries a spoiler segment.
func randomPost(author models.User) models.Post {
	var body string
	if gofakeit.Number(1, 5) == 1 {
		template := spoilerTemplates[gofakeit.Number(0, len(spoilerTemplates)-1)]
		body = fmt.Sprintf(template, gofakeit.HackerPhrase())
	} else {
		template := memeTemplates[gofakeit.Number(0, len(memeTemplates)-1)]
		body = fillTemplate(template)
	}

	return models.Post{
		UserID:     author.ID,
		AuthorName: author.Name,
		Team:       author.Team,
		Tags:       randomTags(),
		Mood:       moods[gofakeit.Number(0, len(moods)-1)],
		Title:      strings.TrimSuffix(gofakeit.HackerPhrase(), "!"),
		Body:       body,
	}
}

// fillTemplate substitutes every %s in the template with a noun.
func fillTemplate(template string) string {
	n := strings.Count(template, "%s")
	args := make([]any, n)
	for i := range args {
		args[i] = gofakeit.HackerNoun()
	}
	return fmt.Sprintf(template, args...)
}

// randomTags picks one to three distinct tags from the pool.
func randomTags() []string {
	n := gofakeit.Number(1, 3)
	picked := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(picked) < n {
		tag := tagPool[gofakeit.Number(0, len(tagPool)-1)]
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		picked = append(picked, tag)
	}
	return picked
}

func shouldLike() bool {
	return gofakeit.Number(1, 100) <= 40
}

func shouldBookmark() bool {
	return gofakeit.Number(1, 100) <= 15
}
