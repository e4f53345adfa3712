// Package catalog is the static registry of sticker categories and their subcategories.
package catalog

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownSubcategory = errors.New("unknown subcategory")
)

type Subcategory struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Emoji string `json:"emoji"`
}

type Category struct {
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description"`
	Emoji         string        `json:"emoji"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// HasSubcategories reports whether products of this category are grouped further.
func (c Category) HasSubcategories() bool {
	return len(c.Subcategories) > 0
}

// Subcategory looks up a subcategory by slug.
func (c Category) Subcategory(slug string) (Subcategory, bool) {
	for _, s := range c.Subcategories {
		if s.Slug == slug {
			return s, true
		}
	}
	return Subcategory{}, false
}

var categories = []Category{
	{
		Name: "Anime & Manga", Slug: "anime-manga", Description: "Your favorite characters", Emoji: "🎌",
		Subcategories: []Subcategory{
			{Name: "One Piece", Slug: "one-piece", Emoji: "🏴‍☠️"},
			{Name: "Dragon Ball Z", Slug: "dragon-ball-z", Emoji: "🐉"},
			{Name: "Demon Slayer", Slug: "demon-slayer", Emoji: "⚔️"},
			{Name: "Jujutsu Kaisen", Slug: "jujutsu-kaisen", Emoji: "👹"},
			{Name: "Blue Lock", Slug: "blue-lock", Emoji: "⚽"},
			{Name: "Naruto", Slug: "naruto", Emoji: "🍥"},
			{Name: "Bleach", Slug: "bleach", Emoji: "💀"},
			{Name: "Hunter x Hunter", Slug: "hunter-x-hunter", Emoji: "🎯"},
		},
	},
	{
		Name: "Gaming", Slug: "gaming", Description: "Level up your setup", Emoji: "🎮",
		Subcategories: []Subcategory{
			{Name: "GTA Series", Slug: "gta-series", Emoji: "🏎️"},
			{Name: "Valorant", Slug: "valorant", Emoji: "🎯"},
			{Name: "CS2", Slug: "cs2", Emoji: "🔫"},
			{Name: "Apex Legends", Slug: "apex-legends", Emoji: "🏆"},
			{Name: "PUBG", Slug: "pubg", Emoji: "🏹"},
			{Name: "Fortnite", Slug: "fortnite", Emoji: "🏰"},
			{Name: "Minecraft", Slug: "minecraft", Emoji: "⛏️"},
			{Name: "Among Us", Slug: "among-us", Emoji: "🚀"},
		},
	},
	{Name: "Gen Z Slang", Slug: "gen-z-slang", Description: "IYKYK, No Cap vibes", Emoji: "💬"},
	{Name: "Meme Culture", Slug: "meme-culture", Description: "Internet humor at its finest", Emoji: "😂"},
	{Name: "Cars & JDM", Slug: "cars-and-jdm", Description: "Ride with style", Emoji: "🏎️"},
	{Name: "Hypebeast", Slug: "hypebeast", Description: "Stay fresh, stay fly", Emoji: "👟"},
	{Name: "Tech & Coding", Slug: "tech-and-coding", Description: "For the digital natives", Emoji: "💻"},
	{Name: "Y2K Aesthetic", Slug: "y2k-aesthetic", Description: "Retro futuristic vibes", Emoji: "✨"},
}

// bySlug indexes categories by slug and by the slug derived from their name.
var bySlug = func() map[string]int {
	m := make(map[string]int, 2*len(categories))
	for i, c := range categories {
		m[c.Slug] = i
	}
	for i, c := range categories {
		if _, taken := m[Slugify(c.Name)]; !taken {
			m[Slugify(c.Name)] = i
		}
	}
	return m
}()

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\w-]+`)
	dashes     = regexp.MustCompile(`-{2,}`)
)

// Slugify lower-cases name, turns whitespace into '-', '&' into "-and-",
// drops other non-word characters and collapses repeated dashes.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = whitespace.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "&", "-and-")
	s = nonWord.ReplaceAllString(s, "")
	return dashes.ReplaceAllString(s, "-")
}

// All returns the categories in display order.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup finds a category by slug, by the slug of its name, or by its display name.
func Lookup(slugOrName string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(slugOrName))
	if i, ok := bySlug[key]; ok {
		return categories[i], true
	}
	if i, ok := bySlug[Slugify(slugOrName)]; ok {
		return categories[i], true
	}
	return Category{}, false
}

// Route is a validated category path.
type Route struct {
	Category    Category
	Subcategory *Subcategory
}

// Resolve validates a category and an optional subcategory.
// A subcategory is only accepted under a category that lists it.
func Resolve(category, subcategory string) (Route, error) {
	c, ok := Lookup(category)
	if !ok {
		return Route{}, ErrUnknownCategory
	}
	if subcategory == "" {
		return Route{Category: c}, nil
	}
	sub, ok := c.Subcategory(strings.ToLower(subcategory))
	if !ok {
		return Route{}, ErrUnknownSubcategory
	}
	return Route{Category: c, Subcategory: &sub}, nil
}

// SubcategorySlug returns the subcategory slug of the route, or "".
func (r Route) SubcategorySlug() string {
	if r.Subcategory == nil {
		return ""
	}
	return r.Subcategory.Slug
}
