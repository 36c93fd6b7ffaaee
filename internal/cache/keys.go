package cache

// Query names shared by every reader and writer of the cache.
const (
	Chat         = "chat"
	Favorites    = "favorites"
	Today        = "today"
	SevenDays    = "seven_days"
	ThirtyDays   = "thirty_days"
	MyKB         = "my_kb"
	OtherKB      = "other_kb"
	PredefinedKB = "predefined_kb"
	File         = "file"
	Me           = "me"
	Aggregate    = "aggregate"
)

type Mutation string

const (
	CreateChat        Mutation = "create-chat"
	RenameChat        Mutation = "rename-chat"
	FavoriteChat      Mutation = "favorite-chat"
	DeleteChat        Mutation = "delete-chat"
	CreateKB          Mutation = "create-kb"
	UpdateKB          Mutation = "update-kb"
	DeleteKB          Mutation = "delete-kb"
	AddFilesToKB      Mutation = "add-files-kb"
	RemoveFilesFromKB Mutation = "remove-files-kb"
)

var chatListings = []string{Favorites, Today, SevenDays, ThirtyDays}
var kbListings = []string{MyKB, OtherKB}

// Invalidations lists the queries each mutation can change.
var Invalidations = map[Mutation][]string{
	CreateChat:        {Today},
	RenameChat:        chatListings,
	FavoriteChat:      chatListings,
	DeleteChat:        chatListings,
	CreateKB:          kbListings,
	UpdateKB:          kbListings,
	DeleteKB:          kbListings,
	AddFilesToKB:      kbListings,
	RemoveFilesFromKB: kbListings,
}

// Apply invalidates every query m affects.
func (c *Cache) Apply(m Mutation) {
	for _, name := range Invalidations[m] {
		c.InvalidatePrefix(name)
	}
}
