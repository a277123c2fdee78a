package validate

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
)

const goodToken = "ntn_1234567890abcdefghij"

// fakeAPI authenticates only goodToken and serves fixed databases.
type fakeAPI struct {
	token     string
	databases map[string]*notionapi.Database
}

func (f *fakeAPI) QueryDatabase(context.Context, notionapi.DatabaseID, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (f *fakeAPI) GetDatabase(_ context.Context, id notionapi.DatabaseID) (*notionapi.Database, error) {
	if db, ok := f.databases[string(id)]; ok {
		return db, nil
	}
	return nil, &notionapi.Error{Status: 404, Code: "object_not_found", Message: "Could not find database"}
}

func (f *fakeAPI) GetPage(context.Context, notionapi.PageID) (*notionapi.Page, error) {
	return nil, &notionapi.Error{Status: 404, Code: "object_not_found", Message: "Could not find page"}
}

func (f *fakeAPI) GetBlockChildren(context.Context, notionapi.BlockID, *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	return &notionapi.GetChildrenResponse{}, nil
}

func (f *fakeAPI) Me(context.Context) (*notionapi.User, error) {
	if f.token != goodToken {
		return nil, &notionapi.Error{Status: 401, Code: "unauthorized", Message: "API token is invalid."}
	}
	return &notionapi.User{Name: "Blog Bot"}, nil
}

func database(title string, props notionapi.PropertyConfigs) *notionapi.Database {
	return &notionapi.Database{
		Title:      []notionapi.RichText{{PlainText: title}},
		Properties: props,
	}
}

func postsDatabase() *notionapi.Database {
	return database("Posts", notionapi.PropertyConfigs{
		"Title":           &notionapi.TitlePropertyConfig{Type: "title"},
		"Slug":            &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"Status":          &notionapi.SelectPropertyConfig{Type: "select"},
		"Published Date":  &notionapi.DatePropertyConfig{Type: "date"},
		"Author":          &notionapi.RelationPropertyConfig{Type: "relation"},
		"Category":        &notionapi.SelectPropertyConfig{Type: "select"},
		"Tags":            &notionapi.MultiSelectPropertyConfig{Type: "multi_select"},
		"Excerpt":         &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"Featured Image":  &notionapi.FilesPropertyConfig{Type: "files"},
		"SEO Title":       &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"SEO Description": &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"Reading Time":    &notionapi.NumberPropertyConfig{Type: "number"},
		"Featured":        &notionapi.CheckboxPropertyConfig{Type: "checkbox"},
	})
}

func newValidator(dbs notion.Databases, databases map[string]*notionapi.Database) (*Validator, *[]string) {
	var tried []string
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := func(token string) (*notion.Client, error) {
		tried = append(tried, token)
		api := &fakeAPI{token: token, databases: databases}
		return notion.NewWithAPI(api, notion.Options{Databases: dbs}, logger), nil
	}
	return New(factory, dbs, logger), &tried
}

func TestCheckTokenFormat(t *testing.T) {
	tests := []struct {
		token   string
		wantErr bool
	}{
		{"secret_abc", false},
		{"ntn_abc", false},
		{`  "ntn_abc"  `, false},
		{"abc", true},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		err := CheckTokenFormat(tt.token)
		if tt.wantErr {
			assert.Error(t, err, tt.token)
		} else {
			assert.NoError(t, err, tt.token)
		}
	}
}

func TestTokenVariants(t *testing.T) {
	assert.Equal(t, []string{"ntn_abc"}, TokenVariants("ntn_abc"))
	assert.Equal(t, []string{" ntn_abc\n", "ntn_abc"}, TokenVariants(" ntn_abc\n"))
	assert.Equal(t, []string{`"ntn_abc"`, "ntn_abc"}, TokenVariants(`"ntn_abc"`))
	assert.Equal(t, []string{` 'ntn_abc' `, `'ntn_abc'`, "ntn_abc"}, TokenVariants(` 'ntn_abc' `))
	assert.Empty(t, TokenVariants("  "))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "ntn_...ghij", MaskToken(goodToken))
	assert.Equal(t, "secret_...wxyz", MaskToken("secret_abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "*****", MaskToken("short"))
}

func TestRun_Passes(t *testing.T) {
	dbs := notion.Databases{Posts: "posts-db", Authors: "authors-db", Categories: "categories-db"}
	authors := database("Authors", notionapi.PropertyConfigs{
		"Name": &notionapi.TitlePropertyConfig{Type: "title"},
		"Slug": &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"Bio":  &notionapi.RichTextPropertyConfig{Type: "rich_text"},
	})
	categories := database("Categories", notionapi.PropertyConfigs{
		"Name":  &notionapi.TitlePropertyConfig{Type: "title"},
		"Slug":  &notionapi.RichTextPropertyConfig{Type: "rich_text"},
		"Color": &notionapi.SelectPropertyConfig{Type: "select"},
	})
	v, _ := newValidator(dbs, map[string]*notionapi.Database{
		"posts-db":      postsDatabase(),
		"authors-db":    authors,
		"categories-db": categories,
	})

	report := v.Run(context.Background(), goodToken)

	require.True(t, report.Passed(), "%+v", report.Checks)
	assert.Equal(t, "Blog Bot", report.BotName)
	assert.Len(t, report.Checks, 5)

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "[PASS] posts database")
	assert.Contains(t, out.String(), "All 5 checks passed.")
}

func TestRun_QuotedTokenFallsBackToCleanVariant(t *testing.T) {
	v, tried := newValidator(notion.Databases{Posts: "posts-db"},
		map[string]*notionapi.Database{"posts-db": postsDatabase()})

	report := v.Run(context.Background(), ` "`+goodToken+`" `)

	assert.True(t, report.Passed(), "%+v", report.Checks)
	assert.Equal(t, []string{` "` + goodToken + `" `, `"` + goodToken + `"`, goodToken}, *tried)
}

func TestRun_AuthenticationFails(t *testing.T) {
	v, tried := newValidator(notion.Databases{Posts: "posts-db"}, nil)

	report := v.Run(context.Background(), "ntn_wrong")

	assert.False(t, report.Passed())
	assert.Len(t, *tried, 1)
	require.Len(t, report.Checks, 2, "database checks are skipped")
	assert.Equal(t, "authentication", report.Checks[1].Name)
	assert.False(t, report.Checks[1].Passed)
}

func TestRun_SchemaProblems(t *testing.T) {
	posts := postsDatabase()
	delete(posts.Properties, "Slug")
	posts.Properties["Featured"] = &notionapi.SelectPropertyConfig{Type: "select"}

	v, _ := newValidator(notion.Databases{Posts: "posts-db", Authors: "missing-db"},
		map[string]*notionapi.Database{"posts-db": posts})

	report := v.Run(context.Background(), goodToken)
	require.False(t, report.Passed())

	postsCheck := report.Checks[2]
	assert.False(t, postsCheck.Passed)
	assert.Equal(t, []string{
		`missing property "Slug" (rich_text)`,
		`property "Featured" is select, want checkbox`,
	}, postsCheck.Problems)

	authorsCheck := report.Checks[3]
	assert.Equal(t, "authors database", authorsCheck.Name)
	assert.False(t, authorsCheck.Passed)
	assert.Contains(t, authorsCheck.Detail, "not found")

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "2 of 4 checks failed.")
}

func TestRun_MissingPostsDatabase(t *testing.T) {
	v, _ := newValidator(notion.Databases{}, nil)

	report := v.Run(context.Background(), goodToken)

	assert.False(t, report.Passed())
	last := report.Checks[len(report.Checks)-1]
	assert.Equal(t, "posts database", last.Name)
	assert.Equal(t, "database id is not configured", last.Detail)
}
