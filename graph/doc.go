// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

/*
Package graph 提供类型化的工作流图运行时：一个状态机执行器。

# 概述

每个节点（Node）声明自己可能产生的结果集合（OutcomeSet），图在构建时
从这些声明推导出完整的转移表并做穷举校验；引擎按声明驱动执行，直到
某个节点返回终止值（End）。调用方提供的可变共享状态（State）贯穿
所有步骤，历史（History）以追加方式记录每一步，并用深拷贝快照隔离，
后续对活动状态的修改不会污染已记录的审计条目。

# 核心接口与类型

  - Node / Identifier  — 计算单元接口与身份覆盖接口
  - OutcomeSet         — 节点结果契约声明（边、终止、通配）
  - Goto / End         — 节点计算的两种结果
  - State / Serializer — 调用方状态契约（深拷贝 + 可选序列化）
  - Graph              — 不可变注册表 + 执行引擎（New / Next / Run）
  - History            — 追加式审计日志（step / interrupt / end）
  - SetupError         — 构建期校验失败（重复 ID、悬空边、非法声明）
  - RuntimeError       — 执行期防御性失败（未注册节点、非法结果）

# 主要能力

  - 构建期穷举校验：所有悬空引用一次性聚合上报，而非逐个失败
  - 通配节点（wildcard）豁免悬空校验，可转移到任意已注册节点
  - 快照隔离：历史条目的状态快照在创建时冻结
  - 环合法：不做环检测，无可达 End 的图会一直运行
  - 单次运行单线程；并发运行需各自持有独立 State
*/
package graph
