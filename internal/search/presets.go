package search

import "strings"

// Preset 领域检索预设：查询后缀 + 域名白名单 + 开关
type Preset struct {
	Name              string
	Suffix            string
	IncludeDomains    []string
	IncludeAnswer     bool
	IncludeRawContent bool
}

// Apply 将预设叠加到查询上。maxResults 为 0 时保留查询原有的数量
func (p Preset) Apply(q Query, maxResults int) Query {
	text := strings.TrimSpace(q.Text)
	if text != "" && p.Suffix != "" {
		text = text + " " + p.Suffix
	}
	q.Text = text
	if maxResults != 0 {
		q.MaxResults = maxResults
	}
	q.IncludeDomains = append([]string(nil), p.IncludeDomains...)
	q.ExcludeDomains = nil
	q.IncludeAnswer = p.IncludeAnswer
	q.IncludeRawContent = p.IncludeRawContent
	return q
}

var NewsPreset = Preset{
	Name:   "news",
	Suffix: "news recent",
	IncludeDomains: []string{
		"reuters.com", "bbc.com", "cnn.com", "apnews.com",
		"nytimes.com", "wsj.com", "bloomberg.com", "techcrunch.com",
	},
	IncludeAnswer: true,
}

var ResearchPreset = Preset{
	Name:   "research",
	Suffix: "research paper academic",
	IncludeDomains: []string{
		// academic
		"arxiv.org", "ar5iv.labs.arxiv.org", "scholar.google.com", "ieee.org", "acm.org",
		"nature.com", "science.org", "researchgate.net", "semanticscholar.org",
		"pubmed.ncbi.nlm.nih.gov", "doi.org",
		// technical references
		"docs.python.org", "github.com", "stackoverflow.com", "developer.mozilla.org",
		"docs.microsoft.com", "cloud.google.com", "aws.amazon.com",
	},
	IncludeAnswer:     true,
	IncludeRawContent: true,
}

var ProgrammingPreset = Preset{
	Name:   "programming",
	Suffix: "documentation API guide tutorial",
	IncludeDomains: []string{
		// API tooling
		"postman.com", "swagger.io", "openapi.org", "restfulapi.net",
		"apidog.com", "insomnia.rest", "rapidapi.com", "apidocs.io",
		// platform APIs
		"developers.google.com", "developer.apple.com", "developer.twitter.com",
		"docs.github.com", "developer.spotify.com", "developers.facebook.com",
		"developer.mozilla.org", "docs.microsoft.com", "cloud.google.com", "aws.amazon.com",
		// framework and database docs
		"docs.python.org", "nodejs.org", "reactjs.org", "vuejs.org", "angular.io",
		"django-rest-framework.org", "flask.palletsprojects.com", "fastapi.tiangolo.com",
		"kubernetes.io", "docker.com", "redis.io", "mongodb.com", "postgresql.org",
		// communities
		"github.com", "stackoverflow.com", "dev.to", "hashnode.com",
		"freecodecamp.org", "codecademy.com", "tutorialspoint.com", "w3schools.com",
		// tech media
		"techcrunch.com", "venturebeat.com", "arstechnica.com", "wired.com",
		"medium.com", "hackernoon.com", "smashingmagazine.com", "css-tricks.com",
		// japanese tech sites
		"qiita.com", "zenn.dev", "speakerdeck.com", "slideshare.net",
		"tech.recruit-mp.co.jp", "engineering.mercari.com", "techblog.yahoo.co.jp",
		// package registries
		"pypi.org", "npmjs.com", "packagist.org", "rubygems.org", "crates.io",
	},
	IncludeAnswer:     true,
	IncludeRawContent: true,
}

// Presets 按名称索引的全部预设
var Presets = map[string]Preset{
	NewsPreset.Name:        NewsPreset,
	ResearchPreset.Name:    ResearchPreset,
	ProgrammingPreset.Name: ProgrammingPreset,
}
