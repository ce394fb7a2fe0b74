package ports

// MediaElement est l'élément audio sous-jacent. Un seul tracker le
// pilote à la fois ; l'instance précédente doit être démontée avant
// qu'une nouvelle ne s'attache.
//
// L'état paused de l'élément fait foi : le flag du tracker n'en est
// qu'un miroir best-effort (l'élément peut se mettre en pause seul,
// ex. buffering).
type MediaElement interface {
	Play() error
	Pause() error
	// Seek borne la position à [0, durée].
	Seek(seconds float64)
	CurrentTime() float64
	// Duration vaut 0 tant que les métadonnées ne sont pas chargées.
	Duration() float64
	Paused() bool

	// OnTimeUpdate enregistre le callback de progression d'horloge.
	// nil désenregistre.
	OnTimeUpdate(fn func(seconds float64))
	// OnLoadedMetadata enregistre le callback de chargement des
	// métadonnées (durée connue). nil désenregistre.
	OnLoadedMetadata(fn func(duration float64))
}

// CloseGuard intercepte la fermeture pendant la lecture (best-effort,
// pas une garantie de durabilité : la dernière écriture débouncée peut
// ne pas avoir atterri).
type CloseGuard interface {
	Arm()
	Disarm()
}
