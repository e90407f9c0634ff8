// Command corpus-pruner removes sentences with anomalous vocabulary from a
// text corpus.
//
// Usage:
//
//	corpus-pruner prune --config pruner.yaml --input corpus.txt --retained clean.txt
//	corpus-pruner stats --input corpus.txt --min-zipf-diff 1
//	corpus-pruner ngram build --lang en --n 3 --source reference.txt
//	corpus-pruner oracle import --db freq.db --lang en --wordlist en.txt
//
// Input files hold one sentence per line; "-" reads standard input.
package main
