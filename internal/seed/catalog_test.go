package seed

import (
	"testing"

	"samplepedia/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Label{},
		&models.AnalysisTask{},
		&models.Solution{},
		&models.Favorite{},
		&models.SolutionLike{},
		&models.Comment{},
		&models.SampleImage{},
		&models.Course{},
		&models.CourseReference{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCatalog_Idempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	if err := Catalog(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Catalog(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var labelCount int64
	if err := db.Model(&models.Label{}).Count(&labelCount).Error; err != nil {
		t.Fatalf("count labels: %v", err)
	}
	want := int64(len(BuiltInTags) + len(BuiltInTools))
	if labelCount != want {
		t.Fatalf("expected %d labels, got %d", want, labelCount)
	}

	var imageCount int64
	if err := db.Model(&models.SampleImage{}).Count(&imageCount).Error; err != nil {
		t.Fatalf("count images: %v", err)
	}
	if imageCount != int64(GalleryImageCount) {
		t.Fatalf("expected %d gallery images, got %d", GalleryImageCount, imageCount)
	}

	for _, name := range BuiltInTags {
		var l models.Label
		if err := db.Where("name = ?", name).First(&l).Error; err != nil {
			t.Fatalf("missing built-in tag %s: %v", name, err)
		}
	}
}

func TestFactory_TaskWithEngagement(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	author, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	reader, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create reader: %v", err)
	}

	task, err := f.CreateTask(author, models.DifficultyMedium)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !models.SHA256Pattern.MatchString(task.SHA256) {
		t.Fatalf("task has invalid sha256: %q", task.SHA256)
	}

	var tagCount int64
	if err := db.Table("task_tags").Where("analysis_task_id = ?", task.ID).Count(&tagCount).Error; err != nil {
		t.Fatalf("count task tags: %v", err)
	}
	if tagCount == 0 {
		t.Fatal("expected task to carry at least one tag")
	}

	solution, err := f.CreateSolution(author, task)
	if err != nil {
		t.Fatalf("create solution: %v", err)
	}
	if solution.SolutionType.External() && solution.URL == "" {
		t.Fatal("external solution missing URL")
	}
	if !solution.SolutionType.External() && solution.Content == "" {
		t.Fatal("onsite solution missing content")
	}

	if _, err := f.CreateComment(reader, task); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := f.CreateFavorite(reader, task); err != nil {
		t.Fatalf("create favorite: %v", err)
	}
	if err := f.CreateSolutionLike(reader, solution); err != nil {
		t.Fatalf("create solution like: %v", err)
	}

	var favCount int64
	if err := db.Model(&models.Favorite{}).Where("task_id = ?", task.ID).Count(&favCount).Error; err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if favCount != 1 {
		t.Fatalf("expected 1 favorite, got %d", favCount)
	}
}

func TestFactory_CourseReferences(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	author, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	pinned, err := f.CreateTask(author, models.DifficultyEasy)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	course, err := f.CreateCourse("Practical Malware Analysis", "https://courses.example.com/pma")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	ref, err := f.CreateCourseReference(course, 1, 2, pinned)
	if err != nil {
		t.Fatalf("create course reference: %v", err)
	}
	if ref.LectureTitle == "" {
		t.Fatal("expected a generated lecture title")
	}

	var pinCount int64
	if err := db.Table("task_course_references").
		Where("course_reference_id = ?", ref.ID).Count(&pinCount).Error; err != nil {
		t.Fatalf("count pinned tasks: %v", err)
	}
	if pinCount != 1 {
		t.Fatalf("expected 1 pinned task, got %d", pinCount)
	}

	// The (course, section, lecture) slot is unique.
	if _, err := f.CreateCourseReference(course, 1, 2); err == nil {
		t.Fatal("expected duplicate lecture slot to be rejected")
	}
}
