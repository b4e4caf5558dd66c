package models

// User is a registered account together with its two personal movie
// collections. Every profile column is nullable, so the fields are pointers;
// the password column never leaves the process as JSON.
type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Username  *string `gorm:"size:80;unique" json:"username"`
	Email     *string `gorm:"size:120;unique" json:"email"`
	Password  *string `gorm:"size:120" json:"-"`
	Watchlist []Movie `gorm:"many2many:watchlist" json:"watchlist"`
	Watched   []Movie `gorm:"many2many:watched" json:"watched"`
}

// Movie is a catalog entry built once from the Kinopoisk provider and never
// mutated through the API. Genres, actors and director hold comma-delimited
// names rather than normalized relations.
type Movie struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Title           *string  `gorm:"size:255" json:"title"`
	Year            *int     `json:"year"`
	Description     *string  `gorm:"type:text" json:"description"`
	KinopoiskRating *float64 `json:"kinopoisk_rating"`
	Genres          *string  `gorm:"size:255" json:"genres"`
	PosterURL       *string  `gorm:"size:255" json:"poster_url"`
	Actors          *string  `gorm:"type:text" json:"actors"`
	Director        *string  `gorm:"size:255" json:"director"`
}
