// Package language normalizes the locale codes accepted by the card
// databases (ISO 639-1 codes, 3-letter codes, or English words) to the
// 2-letter form both services expect.
package language
