package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/viktoriatyapkova/RPM/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Wire-level messages. These are the original service's localized contract,
// so they stay in Russian.
const (
	errNotFound      = "Не найдено"
	errUserNotFound  = "Пользователь не найден"
	errMovieNotFound = "Фильм не найден"
	errNotInList     = "Фильма нет в списке"
	errInternal      = "Internal server error"
)

// listKind binds one of the two collections to its GORM association, join
// table and wire messages.
type listKind struct {
	association string
	joinTable   string
	addedMsg    string
	removedMsg  string
}

var (
	watchlistKind = listKind{
		association: "Watchlist",
		joinTable:   "watchlist",
		addedMsg:    "Фильм добавлен в список 'хочу посмотреть'",
		removedMsg:  "Фильм удален из списка 'хочу посмотреть'",
	}
	watchedKind = listKind{
		association: "Watched",
		joinTable:   "watched",
		addedMsg:    "Фильм добавлен в список 'уже посмотрел'",
		removedMsg:  "Фильм удален из списка 'уже посмотрел'",
	}
)

// userBody is the create/update request payload. Pointer fields distinguish
// "absent" from "empty", which is what makes partial updates work.
type userBody struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// normalize replaces nil collections with empty slices so they serialize as
// [] rather than null.
func normalize(user *models.User) {
	if user.Watchlist == nil {
		user.Watchlist = []models.Movie{}
	}
	if user.Watched == nil {
		user.Watched = []models.Movie{}
	}
}

// HandleMovies returns the whole catalog in database order.
func HandleMovies(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movies := []models.Movie{}
		if err := db.WithContext(r.Context()).Find(&movies).Error; err != nil {
			slog.Error("Failed to list movies", slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, movies)
	}
}

// HandleMovie returns a single movie by id.
func HandleMovie(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, errNotFound, http.StatusNotFound)
			return
		}

		var movie models.Movie
		if err := db.WithContext(r.Context()).First(&movie, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, errNotFound, http.StatusNotFound)
				return
			}
			slog.Error("Failed to get movie", slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, movie)
	}
}

// HandleMovieSearch matches titles containing the given substring,
// case-insensitively. An empty or missing term matches the whole catalog.
func HandleMovieSearch(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")

		movies := []models.Movie{}
		err := db.WithContext(r.Context()).
			Where("LOWER(title) LIKE LOWER(?)", "%"+title+"%").
			Find(&movies).Error
		if err != nil {
			slog.Error("Failed to search movies", slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, movies)
	}
}

// HandleCreateUser inserts a new user. Absent body fields become null
// columns; a missing or malformed body is treated as an empty one.
func HandleCreateUser(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body userBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			slog.Debug("Ignoring unreadable user body", slog.Any("error", err))
		}

		user := models.User{
			Username: body.Username,
			Email:    body.Email,
			Password: body.Password,
		}
		if err := db.WithContext(r.Context()).Create(&user).Error; err != nil {
			slog.Error("Failed to create user", slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}

		normalize(&user)
		writeJSON(w, http.StatusOK, user)
	}
}

// HandleUser returns a user with both collections loaded.
func HandleUser(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := loadUser(db, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateUser applies a partial update: only fields present in the body
// replace stored values.
func HandleUpdateUser(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := loadUser(db, w, r)
		if !ok {
			return
		}

		var body userBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			slog.Debug("Ignoring unreadable user body", slog.Any("error", err))
		}
		if body.Username != nil {
			user.Username = body.Username
		}
		if body.Email != nil {
			user.Email = body.Email
		}
		if body.Password != nil {
			user.Password = body.Password
		}

		err := db.WithContext(r.Context()).
			Omit(clause.Associations).
			Save(user).Error
		if err != nil {
			slog.Error("Failed to update user", slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// HandleAddToWatchlist puts a movie on the user's to-watch list.
func HandleAddToWatchlist(db *gorm.DB) http.HandlerFunc {
	return addToList(db, watchlistKind)
}

// HandleAddToWatched puts a movie on the user's watched list.
func HandleAddToWatched(db *gorm.DB) http.HandlerFunc {
	return addToList(db, watchedKind)
}

// HandleRemoveFromWatchlist takes a movie off the user's to-watch list.
func HandleRemoveFromWatchlist(db *gorm.DB) http.HandlerFunc {
	return removeFromList(db, watchlistKind)
}

// HandleRemoveFromWatched takes a movie off the user's watched list.
func HandleRemoveFromWatched(db *gorm.DB) http.HandlerFunc {
	return removeFromList(db, watchedKind)
}

func addToList(db *gorm.DB, kind listKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, movie, ok := lookupUserAndMovie(db, w, r)
		if !ok {
			return
		}

		// The join table's composite primary key makes a repeated add an
		// upsert no-op instead of a duplicate row.
		err := db.WithContext(r.Context()).
			Model(user).
			Association(kind.association).
			Append(movie)
		if err != nil {
			slog.Error("Failed to add movie to list",
				slog.String("list", kind.joinTable), slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeMessage(w, kind.addedMsg)
	}
}

func removeFromList(db *gorm.DB, kind listKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, movie, ok := lookupUserAndMovie(db, w, r)
		if !ok {
			return
		}

		var present int64
		err := db.WithContext(r.Context()).
			Table(kind.joinTable).
			Where("user_id = ? AND movie_id = ?", user.ID, movie.ID).
			Count(&present).Error
		if err != nil {
			slog.Error("Failed to check list membership",
				slog.String("list", kind.joinTable), slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		if present == 0 {
			writeError(w, errNotInList, http.StatusNotFound)
			return
		}

		err = db.WithContext(r.Context()).
			Model(user).
			Association(kind.association).
			Delete(movie)
		if err != nil {
			slog.Error("Failed to remove movie from list",
				slog.String("list", kind.joinTable), slog.Any("error", err))
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		writeMessage(w, kind.removedMsg)
	}
}

// loadUser fetches the {id} user with both collections preloaded, writing the
// 404/500 response itself when the lookup fails.
func loadUser(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errUserNotFound, http.StatusNotFound)
		return nil, false
	}

	var user models.User
	err = db.WithContext(r.Context()).
		Preload("Watchlist").
		Preload("Watched").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, errUserNotFound, http.StatusNotFound)
			return nil, false
		}
		slog.Error("Failed to get user", slog.Any("error", err))
		writeError(w, errInternal, http.StatusInternalServerError)
		return nil, false
	}

	normalize(&user)
	return &user, true
}

// lookupUserAndMovie resolves both path ids for the membership operations,
// checking the user before the movie.
func lookupUserAndMovie(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.User, *models.Movie, bool) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errUserNotFound, http.StatusNotFound)
		return nil, nil, false
	}

	var user models.User
	if err := db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, errUserNotFound, http.StatusNotFound)
			return nil, nil, false
		}
		slog.Error("Failed to get user", slog.Any("error", err))
		writeError(w, errInternal, http.StatusInternalServerError)
		return nil, nil, false
	}

	movieID, err := strconv.Atoi(chi.URLParam(r, "movie_id"))
	if err != nil {
		writeError(w, errMovieNotFound, http.StatusNotFound)
		return nil, nil, false
	}

	var movie models.Movie
	if err := db.WithContext(r.Context()).First(&movie, movieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, errMovieNotFound, http.StatusNotFound)
			return nil, nil, false
		}
		slog.Error("Failed to get movie", slog.Any("error", err))
		writeError(w, errInternal, http.StatusInternalServerError)
		return nil, nil, false
	}

	return &user, &movie, true
}
