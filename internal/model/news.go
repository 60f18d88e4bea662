package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImportanceThreshold is the newsworthiness score above which an item is flagged important
const ImportanceThreshold = 0.6

// NewsItem represents a disclosure news document written by the ingestion pipeline
type NewsItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PrimaryTicker   string             `bson:"primary_ticker,omitempty" json:"primaryTicker,omitempty"`
	PublisherTicker string             `bson:"publisher_ticker,omitempty" json:"publisherTicker,omitempty"`
	RelatedTickers  []string           `bson:"related_tickers,omitempty" json:"relatedTickers,omitempty"`
	PublishedAt     *PublishedAt       `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	Category        string             `bson:"category,omitempty" json:"category,omitempty"`
	Newsworthiness  float64            `bson:"newsworthiness" json:"newsworthiness"`
	Headline        string             `bson:"headline,omitempty" json:"headline,omitempty"`
	Facts           []Fact             `bson:"facts,omitempty" json:"facts,omitempty"`
	KeyNumbers      *KeyNumbers        `bson:"key_numbers,omitempty" json:"keyNumbers,omitempty"`
	Tweet           *Tweet             `bson:"tweet,omitempty" json:"tweet,omitempty"`
	SEO             *SEO               `bson:"seo,omitempty" json:"seo,omitempty"`
	VisualPrompt    string             `bson:"visual_prompt,omitempty" json:"visualPrompt,omitempty"`
	PublishTarget   string             `bson:"publish_target,omitempty" json:"publishTarget,omitempty"`
	URL             string             `bson:"url,omitempty" json:"url,omitempty"`
	Ticker          string             `bson:"ticker,omitempty" json:"ticker,omitempty"`
	InsertedAt      string             `bson:"_inserted_at,omitempty" json:"insertedAt,omitempty"`

	// Computed on every read, never stored
	ImageURL    string `bson:"-" json:"imageUrl"`
	IsImportant bool   `bson:"-" json:"isImportant"`
}

// PublishedAt holds the publication date and time as written by the pipeline.
// Date is always zero padded YYYY-MM-DD so string order equals date order.
type PublishedAt struct {
	Date     string `bson:"date,omitempty" json:"date,omitempty"`
	Time     string `bson:"time,omitempty" json:"time,omitempty"`
	Timezone string `bson:"timezone,omitempty" json:"timezone,omitempty"`
}

// Fact is a single extracted key/value fact
type Fact struct {
	Key   string `bson:"k,omitempty" json:"key,omitempty"`
	Value string `bson:"v,omitempty" json:"value,omitempty"`
}

// KeyNumbers holds the headline numbers of a disclosure
type KeyNumbers struct {
	AmountRaw        string `bson:"amount_raw,omitempty" json:"amountRaw,omitempty"`
	RatioToMarketCap string `bson:"ratio_to_market_cap,omitempty" json:"ratioToMarketCap,omitempty"`
	RatioToRevenue   string `bson:"ratio_to_revenue,omitempty" json:"ratioToRevenue,omitempty"`
}

// Tweet holds the generated social media text
type Tweet struct {
	Text       string   `bson:"text,omitempty" json:"text,omitempty"`
	Hashtags   []string `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	Disclaimer string   `bson:"disclaimer,omitempty" json:"disclaimer,omitempty"`
}

// SEO holds derived search engine fields
type SEO struct {
	Title           string `bson:"title,omitempty" json:"title,omitempty"`
	MetaDescription string `bson:"meta_description,omitempty" json:"metaDescription,omitempty"`
	ArticleMD       string `bson:"article_md,omitempty" json:"articleMd,omitempty"`
}

// Date returns the publication date or an empty string
func (n *NewsItem) Date() string {
	if n.PublishedAt == nil {
		return ""
	}
	return n.PublishedAt.Date
}

// Important reports whether the item is above the importance threshold
func (n *NewsItem) Important() bool {
	return n.Newsworthiness > ImportanceThreshold
}
