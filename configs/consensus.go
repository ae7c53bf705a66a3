package configs

type Consensus struct {
	VoteThreshold int `env:"VOTE_THRESHOLD" envDefault:"3"`
}
