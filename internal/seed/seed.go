package seed

import (
	"fmt"
	"log"

	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumTasks    int
	ShouldClean bool
	// MaxDays bounds how far in the past seeded timestamps are spread.
	MaxDays int
	// SkipBcrypt stores plaintext passwords for faster bulk seeding in dev.
	SkipBcrypt bool
}

// Distribution splits a task count across difficulty tiers, in percent.
type Distribution struct {
	Easy     int
	Medium   int
	Advanced int
	Expert   int
}

// defaultDistribution skews toward the entry tiers the way a real catalogue
// fills up: most submissions are easy or medium.
var defaultDistribution = Distribution{Easy: 40, Medium: 35, Advanced: 20, Expert: 5}

// computeCounts converts a total and a percentage distribution into absolute
// counts. Rounding leftovers go to the easy tier.
func computeCounts(total int, d Distribution) (easy, medium, advanced, expert int) {
	easy = total * d.Easy / 100
	medium = total * d.Medium / 100
	advanced = total * d.Advanced / 100
	expert = total * d.Expert / 100
	easy += total - (easy + medium + advanced + expert)
	return easy, medium, advanced, expert
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d tasks...", opts.NumUsers, opts.NumTasks)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	if err := Catalog(db); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	f := NewFactory(db, opts)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	tasks, err := createTasks(f, users, opts.NumTasks)
	if err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}
	log.Printf("%d tasks created", len(tasks))

	if err := createCourses(f, tasks); err != nil {
		return fmt.Errorf("failed to create courses: %w", err)
	}

	if err := createEngagement(f, users, tasks); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, solution_likes, solutions, favorites, task_tags, task_tools, task_course_references, course_references, courses, analysis_tasks, notifications, sample_images, labels, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a few fixed accounts so developers can log in directly.
	if count >= 3 {
		fixed := []struct {
			username string
			staff    bool
		}{
			{"admin", true},
			{"analyst", false},
			{"test", false},
		}
		for _, fx := range fixed {
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = fx.username
				u.Email = fmt.Sprintf("%s@example.com", fx.username)
				u.IsStaff = fx.staff
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createTasks(f *Factory, users []*models.User, count int) ([]*models.AnalysisTask, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author tasks")
	}

	easy, medium, advanced, expert := computeCounts(count, defaultDistribution)
	plan := []struct {
		difficulty models.Difficulty
		n          int
	}{
		{models.DifficultyEasy, easy},
		{models.DifficultyMedium, medium},
		{models.DifficultyAdvanced, advanced},
		{models.DifficultyExpert, expert},
	}

	tasks := make([]*models.AnalysisTask, 0, count)
	for _, p := range plan {
		for i := 0; i < p.n; i++ {
			author := users[f.rng.Intn(len(users))]
			task, err := f.CreateTask(author, p.difficulty)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)

			// Every task carries at least one solution, matching the
			// submission rule for regular users.
			if _, err := f.CreateSolution(author, task); err != nil {
				return nil, err
			}

			if len(tasks)%100 == 0 {
				log.Printf("Created %d tasks...", len(tasks))
			}
		}
	}

	return tasks, nil
}

// createCourses pins the tail of the catalogue onto a couple of course pages,
// two lectures per section. Pinned tasks only appear in the course view.
func createCourses(f *Factory, tasks []*models.AnalysisTask) error {
	courses := []struct{ name, url string }{
		{"Practical Malware Analysis", "https://courses.example.com/practical-malware-analysis"},
		{"Reverse Engineering Bootcamp", "https://courses.example.com/re-bootcamp"},
	}

	// Leave most of the catalogue unpinned.
	perCourse := 4
	if len(tasks) < perCourse*len(courses) {
		return nil
	}
	next := len(tasks) - perCourse*len(courses)

	for _, c := range courses {
		course, err := f.CreateCourse(c.name, c.url)
		if err != nil {
			return err
		}
		for section := 1; section <= 2; section++ {
			for lecture := 1; lecture <= 2; lecture++ {
				if _, err := f.CreateCourseReference(course, section, lecture, tasks[next]); err != nil {
					return err
				}
				next++
			}
		}
	}
	return nil
}

// createEngagement sprinkles favorites, comments, likes and extra solutions
// across the catalogue.
func createEngagement(f *Factory, users []*models.User, tasks []*models.AnalysisTask) error {
	for _, task := range tasks {
		// A random subset of users favorites the task.
		for _, user := range users {
			if user.ID == task.AuthorID {
				continue
			}
			if f.rng.Float32() < 0.15 {
				if err := f.CreateFavorite(user, task); err != nil {
					return err
				}
			}
		}

		// A few comments per task.
		for i := 0; i < f.rng.Intn(4); i++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, task); err != nil {
				return err
			}
		}

		// Occasionally a second solution from someone else, with its own likes.
		if f.rng.Float32() < 0.3 {
			author := users[f.rng.Intn(len(users))]
			solution, err := f.CreateSolution(author, task)
			if err != nil {
				return err
			}
			for _, user := range users {
				if user.ID != author.ID && f.rng.Float32() < 0.1 {
					if err := f.CreateSolutionLike(user, solution); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
