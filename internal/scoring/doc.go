// Package scoring turns validated counts and parser counts into a 100 point
// score across three rubrics.
//
// Rubric A (graaf, 50 points) measures credibility, relevance, actionability,
// accuracy and freshness. Rubric B (craft, 30 points) measures editorial
// craft. Rubric C (technical, 20 points) measures markup.
//
// Score is a pure function. Evidence categories (expert quotes, statistics,
// sources, case studies, FAQs) are read from the validated counts; every
// other metric is read from the parser counts.
package scoring
