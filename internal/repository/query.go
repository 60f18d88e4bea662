package repository

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldDate           = "published_at.date"
	fieldTime           = "published_at.time"
	fieldRelatedTickers = "related_tickers"
	fieldPriceCode      = "Code"
)

// NormalizeTicker upper-cases and trims a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// tickerFilter matches documents whose related tickers contain the ticker.
// Equality against an array field matches any element.
func tickerFilter(ticker string) bson.M {
	return bson.M{fieldRelatedTickers: NormalizeTicker(ticker)}
}

func dateFilter(date string) bson.M {
	return bson.M{fieldDate: date}
}

// dateRangeFilter is inclusive on both ends. It relies on dates being zero
// padded YYYY-MM-DD strings, callers validate that before querying.
func dateRangeFilter(from, to string) bson.M {
	return bson.M{fieldDate: bson.M{"$gte": from, "$lte": to}}
}

// pageOptions sorts by date descending and applies skip/limit for a 1-based page
func pageOptions(page, pageSize int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	return options.Find().
		SetSort(bson.D{{Key: fieldDate, Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
}

func byTimeDesc() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: fieldTime, Value: -1}})
}

func byDateDesc() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: fieldDate, Value: -1}})
}

func latestOptions(count int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: fieldDate, Value: -1}, {Key: fieldTime, Value: -1}}).
		SetLimit(int64(count))
}
