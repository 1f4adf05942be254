// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"samplepedia/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

const hexDigits = "0123456789abcdef"

// RandomSHA256 generates a random 64-character lowercase hex string.
func (f *Factory) RandomSHA256() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = hexDigits[f.rng.Intn(len(hexDigits))]
	}
	return string(b)
}

// spreadCreatedAt returns a timestamp up to opts.MaxDays in the past so seeded
// data doesn't all land on the same instant.
func (f *Factory) spreadCreatedAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTask constructs and persists a sample `models.AnalysisTask` authored
// by the given user, with tags and tools drawn from the built-in catalog.
func (f *Factory) CreateTask(author *models.User, difficulty models.Difficulty, overrides ...func(*models.AnalysisTask)) (*models.AnalysisTask, error) {
	sha := f.RandomSHA256()
	task := &models.AnalysisTask{
		SHA256:       sha,
		DownloadLink: fmt.Sprintf("https://bazaar.abuse.ch/sample/%s/", sha),
		Goal:         gofakeit.Sentence(8),
		Description:  gofakeit.Paragraph(1, 3, 8, "\n"),
		Difficulty:   difficulty,
		AuthorID:     author.ID,
		CreatedAt:    f.spreadCreatedAt(),
	}

	// Roughly a third of samples get a walkthrough video.
	if f.rng.Float32() < 0.35 {
		youtubeIDs := []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}
		task.YouTubeID = youtubeIDs[f.rng.Intn(len(youtubeIDs))]
	}

	for _, override := range overrides {
		override(task)
	}

	if err := f.db.Create(task).Error; err != nil {
		return nil, err
	}

	tags := f.pickLabels(BuiltInTags, 1+f.rng.Intn(3))
	tools := f.pickLabels(BuiltInTools, 1+f.rng.Intn(3))
	if err := f.attachLabels(task, "Tags", tags); err != nil {
		return nil, err
	}
	if err := f.attachLabels(task, "Tools", tools); err != nil {
		return nil, err
	}
	return task, nil
}

func (f *Factory) pickLabels(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := f.rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func (f *Factory) attachLabels(task *models.AnalysisTask, association string, names []string) error {
	labels := make([]models.Label, 0, len(names))
	for _, name := range names {
		var l models.Label
		if err := f.db.Where(models.Label{Name: name}).FirstOrCreate(&l).Error; err != nil {
			return err
		}
		labels = append(labels, l)
	}
	return f.db.Model(task).Association(association).Append(&labels)
}

// CreateSolution constructs and persists a sample `models.Solution` on the
// provided task authored by the provided user.
func (f *Factory) CreateSolution(author *models.User, task *models.AnalysisTask, overrides ...func(*models.Solution)) (*models.Solution, error) {
	solutionType := models.SolutionTypes[f.rng.Intn(len(models.SolutionTypes))]
	solution := &models.Solution{
		TaskID:       task.ID,
		Title:        gofakeit.Sentence(5),
		SolutionType: solutionType,
		AuthorID:     author.ID,
	}
	if solutionType.External() {
		solution.URL = gofakeit.URL()
	} else {
		solution.Content = gofakeit.Paragraph(2, 4, 10, "\n\n")
	}

	for _, override := range overrides {
		override(solution)
	}

	if err := f.db.Create(solution).Error; err != nil {
		return nil, err
	}
	return solution, nil
}

// CreateCourse constructs and persists a `models.Course`.
func (f *Factory) CreateCourse(name, url string, overrides ...func(*models.Course)) (*models.Course, error) {
	course := &models.Course{
		Name: name,
		URL:  url,
	}

	for _, override := range overrides {
		override(course)
	}

	if err := f.db.Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// CreateCourseReference persists a lecture slot on the course and pins the
// given tasks to it. Pinned tasks drop out of the main catalogue listing.
func (f *Factory) CreateCourseReference(course *models.Course, section, lecture int, tasks ...*models.AnalysisTask) (*models.CourseReference, error) {
	ref := &models.CourseReference{
		CourseID:      course.ID,
		Section:       section,
		LectureNumber: lecture,
		LectureTitle:  gofakeit.Sentence(4),
	}
	if err := f.db.Create(ref).Error; err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if err := f.db.Model(ref).Association("Tasks").Append(task); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided task authored by the provided user.
func (f *Factory) CreateComment(user *models.User, task *models.AnalysisTask, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		TaskID:  task.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFavorite persists a favorite from `user` on `task`.
func (f *Factory) CreateFavorite(user *models.User, task *models.AnalysisTask) error {
	favorite := &models.Favorite{
		UserID: user.ID,
		TaskID: task.ID,
	}
	return f.db.Create(favorite).Error
}

// CreateSolutionLike persists a like from `user` on `solution`.
func (f *Factory) CreateSolutionLike(user *models.User, solution *models.Solution) error {
	like := &models.SolutionLike{
		UserID:     user.ID,
		SolutionID: solution.ID,
	}
	return f.db.Create(like).Error
}
