/*
Package analysis measures how the running time of the binary multiplication
program grows with its input.

It generates random operands, lays them out on a tape
(B^blanks num1 # num2 $ B^blanks) and runs many independent trials on a
bounded worker pool. Every trial seeds its own generator from the analyzer
seed and the trial index, so results do not depend on the number of workers.
*/
package analysis
