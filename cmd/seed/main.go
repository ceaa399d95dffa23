package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func main() {
	adminName := flag.String("admin", "", "name of the admin that owns the imported stories")
	assumeYes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed -admin <name> [-yes] <xlsx_file_path>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *adminName == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	f, err := excelize.OpenFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("Failed to open XLSX file", err)
	}
	defer f.Close()

	wb, err := readWorkbook(f)
	if err != nil {
		logger.Fatal("Failed to read XLSX", err)
	}
	fmt.Printf("Persons: %d, tags: %d, stories: %d, skipped rows: %d\n",
		len(wb.Persons), len(wb.Tags), len(wb.Stories), wb.Skipped)

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, &cfg.Upload, &cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize storage", err)
	}

	imported, err := newImporter(conn, store).run(ctx, *adminName, wb)
	if err != nil {
		logger.Fatal("Import failed", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Stories imported: %d\n", imported)
}

type importer struct {
	admins  repository.AdminUserRepository
	tagRepo repository.TagRepository
	persons service.PersonService
	tags    service.TagService
	stories service.StoryService
}

func newImporter(conn *gorm.DB, store storage.FileStore) *importer {
	personRepo := repository.NewPersonRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	return &importer{
		admins:  repository.NewAdminUserRepository(conn),
		tagRepo: tagRepo,
		persons: service.NewPersonService(conn, personRepo, repository.NewImageRepository(conn), store),
		tags:    service.NewTagService(conn, tagRepo),
		stories: service.NewStoryService(conn, repository.NewStoryRepository(conn), personRepo, tagRepo),
	}
}

// run creates persons and tags, then every story through the story service.
// It returns the number of stories created.
func (im *importer) run(ctx context.Context, adminName string, wb *workbook) (int, error) {
	admin, err := im.admins.FindByName(ctx, adminName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("admin %q does not exist", adminName)
		}
		return 0, err
	}

	personIDs := make(map[int]uint, len(wb.Persons))
	for _, p := range wb.Persons {
		person, err := im.persons.CreatePerson(ctx, p.Input)
		if err != nil {
			return 0, fmt.Errorf("persons row %d: %w", p.Row+1, err)
		}
		personIDs[p.Row] = person.ID
	}

	tagIDs := make(map[string]uint)
	ensureTag := func(name string) (uint, error) {
		if id, ok := tagIDs[name]; ok {
			return id, nil
		}
		tag, err := im.tags.CreateTag(ctx, name)
		if errors.Is(err, service.ErrTagAlreadyExists) {
			var existing *model.Tag
			existing, err = im.tagRepo.FindByName(ctx, strings.TrimSpace(name))
			tag = existing
		}
		if err != nil {
			return 0, fmt.Errorf("tag %q: %w", name, err)
		}
		tagIDs[name] = tag.ID
		return tag.ID, nil
	}
	for _, name := range wb.Tags {
		if _, err := ensureTag(name); err != nil {
			return 0, err
		}
	}

	imported := 0
	for _, s := range wb.Stories {
		personID, ok := personIDs[s.PersonRow]
		if !ok {
			logger.Warn("Story skipped: unknown person row", map[string]interface{}{
				"story_key":  s.Key,
				"person_row": s.PersonRow,
			})
			continue
		}

		ids := make([]uint, 0, len(s.Tags))
		for _, name := range s.Tags {
			id, err := ensureTag(name)
			if err != nil {
				return imported, err
			}
			ids = append(ids, id)
		}

		input := service.CreateStoryInput{
			PersonID:     personID,
			AdminID:      admin.ID,
			Translations: s.Translations,
			TagIDs:       ids,
		}
		if len(ids) > 0 {
			input.PrincipalTagID = &ids[0]
		}
		if _, err := im.stories.CreateStory(ctx, input); err != nil {
			return imported, fmt.Errorf("story %q: %w", s.Key, err)
		}
		imported++
	}
	return imported, nil
}
