// Package cmd command line
package cmd

import (
	"context"
	"encoding/xml"
	"html"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Laisky/blog-api/internal/web/blog/model"
	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisqusXML represents the root element of Disqus export XML
type DisqusXML struct {
	XMLName xml.Name       `xml:"disqus"`
	Threads []DisqusThread `xml:"thread"`
	Posts   []DisqusPost   `xml:"post"`
}

// DisqusThread represents a Disqus thread element, one per blog post
type DisqusThread struct {
	// DsqID is the Disqus internal thread ID
	DsqID     string `xml:"id,attr"`
	Link      string `xml:"link"`
	Title     string `xml:"title"`
	IsDeleted bool   `xml:"isDeleted"`
}

// DisqusPost represents a Disqus post element (a comment)
type DisqusPost struct {
	// DsqID is the Disqus internal post ID
	DsqID     string          `xml:"id,attr"`
	Message   string          `xml:"message"`
	CreatedAt string          `xml:"createdAt"`
	IsDeleted bool            `xml:"isDeleted"`
	IsSpam    bool            `xml:"isSpam"`
	Author    DisqusAuthor    `xml:"author"`
	Thread    DisqusThreadRef `xml:"thread"`
}

// DisqusAuthor represents the author of a comment
type DisqusAuthor struct {
	Name        string `xml:"name"`
	IsAnonymous bool   `xml:"isAnonymous"`
	Username    string `xml:"username"`
}

// DisqusThreadRef references a thread by its Disqus ID
type DisqusThreadRef struct {
	DsqID string `xml:"id,attr"`
}

// commentImporter is the persistence used by the import, implemented by dao.Blog.
type commentImporter interface {
	FindPostIDsBySlugs(ctx context.Context, slugs []string) (map[string]primitive.ObjectID, error)
	InsertComments(ctx context.Context, comments []*model.Comment) error
}

var importCMD = &cobra.Command{
	Use:   "import",
	Short: "import data from external sources",
	Long:  `Import data from external sources into the database`,
	Args:  gcmd.NoExtraArgs,
}

var importCommentsCMD = &cobra.Command{
	Use:   "comments",
	Short: "import comments from Disqus export",
	Long: `Import comments from a Disqus XML export file into the blog database.

Threads are matched to posts by the slug taken from the thread link,
either "/posts/{slug}" or the last path segment.

Example usage:
  blog-api import comments --disqus_file=disqus_exported_data.xml --dry`,
	Args: gcmd.NoExtraArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		settings, err := initialize(ctx, cmd)
		if err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}

		db, blogDao, err := connectBlogDB(ctx, settings)
		if err != nil {
			log.Logger.Panic("connect db", zap.Error(err))
		}
		defer closeDB(ctx, db)

		dry, _ := cmd.Flags().GetBool("dry")
		disqusFile, _ := cmd.Flags().GetString("disqus_file")
		if _, err := runImportComments(ctx, blogDao, disqusFile, dry); err != nil {
			log.Logger.Panic("import comments", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(importCMD)
	importCMD.AddCommand(importCommentsCMD)

	importCommentsCMD.Flags().String("disqus_file", "", "path to the Disqus XML export file (required)")
	importCommentsCMD.Flags().Bool("dry", false, "parse and match only, write nothing")
	if err := importCommentsCMD.MarkFlagRequired("disqus_file"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}
}

// importStats tracks statistics for the import process
type importStats struct {
	Imported       int
	SkippedDeleted int
	SkippedSpam    int
	SkippedNoPost  int
}

// runImportComments imports the comments of a Disqus export file
func runImportComments(ctx context.Context,
	store commentImporter, disqusFile string, dryRun bool) (*importStats, error) {
	logger := log.Logger.Named("import-comments")

	fp, err := os.Open(disqusFile)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", disqusFile)
	}
	defer gutils.CloseWithLog(fp, logger)

	disqus := new(DisqusXML)
	if err = xml.NewDecoder(fp).Decode(disqus); err != nil {
		return nil, errors.Wrap(err, "unmarshal disqus xml")
	}
	logger.Info("parsed disqus xml",
		zap.Int("threads", len(disqus.Threads)),
		zap.Int("posts", len(disqus.Posts)))

	threadToSlug := buildThreadToSlugMap(disqus.Threads)
	slugs := make([]string, 0, len(threadToSlug))
	seen := map[string]bool{}
	for _, slug := range threadToSlug {
		if !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}

	slugToID, err := store.FindPostIDsBySlugs(ctx, slugs)
	if err != nil {
		return nil, errors.Wrap(err, "lookup posts")
	}
	logger.Info("matched posts", zap.Int("threads", len(threadToSlug)), zap.Int("posts", len(slugToID)))

	comments, stats := buildComments(disqus.Posts, threadToSlug, slugToID)
	if !dryRun {
		if err = store.InsertComments(ctx, comments); err != nil {
			return nil, errors.Wrap(err, "insert comments")
		}
	}

	logger.Info("import completed",
		zap.Bool("dry_run", dryRun),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped_deleted", stats.SkippedDeleted),
		zap.Int("skipped_spam", stats.SkippedSpam),
		zap.Int("skipped_no_post", stats.SkippedNoPost))
	return stats, nil
}

// buildComments converts disqus posts into comments of the matched blog posts
func buildComments(posts []DisqusPost,
	threadToSlug map[string]string,
	slugToID map[string]primitive.ObjectID) ([]*model.Comment, *importStats) {
	stats := new(importStats)
	comments := make([]*model.Comment, 0, len(posts))
	for _, post := range posts {
		switch {
		case post.IsDeleted:
			stats.SkippedDeleted++
			continue
		case post.IsSpam:
			stats.SkippedSpam++
			continue
		}

		postID, ok := slugToID[threadToSlug[post.Thread.DsqID]]
		if !ok {
			stats.SkippedNoPost++
			continue
		}

		text := cleanHTMLContent(post.Message)
		if text == "" {
			stats.SkippedDeleted++
			continue
		}

		createdAt, err := parseDisqusTime(post.CreatedAt)
		if err != nil {
			log.Logger.Debug("unknown comment time, use now",
				zap.String("time", post.CreatedAt), zap.Error(err))
			createdAt = gutils.Clock.GetUTCNow()
		}

		comments = append(comments, &model.Comment{
			ID:        primitive.NewObjectID(),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
			Post:      postID,
			Author:    authorName(post.Author),
			Text:      text,
		})
		stats.Imported++
	}

	return comments, stats
}

// buildThreadToSlugMap builds a mapping from Disqus thread ID to post slug
func buildThreadToSlugMap(threads []DisqusThread) map[string]string {
	result := make(map[string]string)
	for _, thread := range threads {
		if thread.IsDeleted {
			continue
		}

		if slug := extractSlugFromLink(thread.Link); slug != "" {
			result[thread.DsqID] = slug
		}
	}

	return result
}

// extractSlugFromLink extracts the post slug from a Disqus thread link,
// like https://blog.example.com/posts/{slug}
func extractSlugFromLink(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}

	p := strings.TrimSuffix(parsed.Path, "/")
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "posts" && i+1 < len(parts) {
			return unescapeSegment(parts[i+1])
		}
	}

	if base := path.Base(p); base != "." && base != "/" {
		return unescapeSegment(base)
	}

	return ""
}

func unescapeSegment(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}

func authorName(author DisqusAuthor) string {
	if name := strings.TrimSpace(author.Name); name != "" {
		return name
	}
	if !author.IsAnonymous {
		if name := strings.TrimSpace(author.Username); name != "" {
			return name
		}
	}

	return model.DefaultAuthorName
}

// parseDisqusTime parses a Disqus timestamp in ISO 8601 format
func parseDisqusTime(s string) (time.Time, error) {
	// Disqus uses format: 2015-03-25T14:10:41Z
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "parse time %s", s)
		}
	}
	return t.UTC(), nil
}

// cleanHTMLContent strips the basic markup of a disqus message
func cleanHTMLContent(content string) string {
	content = strings.TrimSpace(content)
	for _, tag := range []string{"<p>", "<b>", "</b>", "<i>", "</i>"} {
		content = strings.ReplaceAll(content, tag, "")
	}
	for _, tag := range []string{"</p>", "<br>", "<br/>", "<br />"} {
		content = strings.ReplaceAll(content, tag, "\n")
	}

	return strings.TrimSpace(html.UnescapeString(content))
}
