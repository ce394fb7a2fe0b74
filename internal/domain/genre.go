package domain

// Vocabulaire de genres du catalogue (fixe, 9 entrées).
var genreNames = map[int]string{
	1: "Personal Growth",
	2: "True Crime and Investigative Journalism",
	3: "History",
	4: "Comedy",
	5: "Entertainment",
	6: "Business",
	7: "Fiction",
	8: "News",
	9: "Kids and Family",
}

const UnknownGenre = "Unknown Genre"

func GenreName(id int) string {
	if name, ok := genreNames[id]; ok {
		return name
	}
	return UnknownGenre
}

// GenreID renvoie (0, false) pour un nom inconnu.
func GenreID(name string) (int, bool) {
	for id, n := range genreNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

func GenreCount() int { return len(genreNames) }
