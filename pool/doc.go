// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

/*
Package pool provides bounded concurrent execution of voting sessions.

An AgentPool runs one or many independent sessions, routing every
individual sample call through a single weighted semaphore that caps the
number of simultaneous in-flight calls across the entire pool. The
semaphore is acquired immediately before each sampling call and released
on every exit path. Rounds within one session stay strictly sequential;
the pool only parallelizes across sessions.

ExecutePipeline launches one session per spec concurrently and returns
results in input order once all sessions finish. An optional decision
cache short-circuits sessions whose step fingerprint already settled.
*/
package pool
